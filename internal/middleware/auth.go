package middleware

import (
	"context"
	"net/http"
	"strings"

	"google-auth-service/internal/session"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// TokenParser validates session tokens.
type TokenParser interface {
	Parse(token string) (*session.Claims, error)
}

type AuthMiddleware struct {
	Sessions TokenParser
}

func NewAuthMiddleware(sessions TokenParser) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions}
}

// RequireAuth admits requests carrying a valid session token in the
// Authorization header. Session tokens are stateless: validity is the
// signature and the expiry, nothing is looked up.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := a.Sessions.Parse(token)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
