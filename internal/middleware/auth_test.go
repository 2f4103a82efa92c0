package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"google-auth-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newRouter(t *testing.T, issuer *session.Issuer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	api := r.Group("/api")
	api.Use(GinRequireAuth(NewAuthMiddleware(issuer)))
	api.GET("/me", func(c *gin.Context) {
		fromCtx, _ := UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString(ContextUserIDKey),
			"from_ctx": fromCtx,
		})
	})
	return r
}

func TestGinRequireAuth(t *testing.T) {
	issuer, err := session.NewIssuer(testSecret)
	require.NoError(t, err)

	expiredIssuer, err := session.NewIssuer(testSecret, session.WithClock(func() time.Time {
		return time.Now().Add(-40 * 24 * time.Hour)
	}))
	require.NoError(t, err)

	valid, err := issuer.Issue("user-1")
	require.NoError(t, err)
	expired, err := expiredIssuer.Issue("user-1")
	require.NoError(t, err)

	router := newRouter(t, issuer)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+valid.Value)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user_id":"user-1","from_ctx":"user-1"}`, rec.Body.String())
	})

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + valid.Value,
		"empty bearer":   "Bearer ",
		"garbage":        "Bearer nope",
		"expired":        "Bearer " + expired.Value,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.NotContains(t, rec.Body.String(), "user-1")
		})
	}
}
