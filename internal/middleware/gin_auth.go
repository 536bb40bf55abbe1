package middleware

import (
	"net/http"

	"ditroboticstw/internal/auth"

	"github.com/gin-gonic/gin"
)

// Gin adapts a net/http middleware to Gin. The Gin chain continues only
// if the middleware calls its next handler.
func Gin(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false

		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// The middleware answered the request itself: stop the Gin chain
		if !called {
			if !c.Writer.Written() {
				c.Writer.WriteHeaderNow()
			}
			c.Abort()
		}
	}
}

// RequireCapability rejects with 403 unless the request principal
// provides capability.
func RequireCapability(capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.PrincipalFromContext(c.Request.Context()).Can(capability) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
