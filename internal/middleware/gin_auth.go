package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is the gin context key holding the authenticated user id.
const ContextUserIDKey = "userID"

// GinRequireAuth adapts the net/http AuthMiddleware to Gin.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			if id, ok := UserIDFromContext(r.Context()); ok {
				c.Set(ContextUserIDKey, id)
			}
			c.Next()
		})

		auth.RequireAuth(next).ServeHTTP(c.Writer, c.Request)

		// If auth middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
