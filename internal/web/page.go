package web

import (
	"ditroboticstw/internal/auth"

	"github.com/gin-gonic/gin"
)

// Data returns template data carrying what the header needs: the page
// title, the request principal and the logged-in user.
func Data(c *gin.Context, title string, values gin.H) gin.H {
	ctx := c.Request.Context()

	data := gin.H{
		"Title":     title,
		"Principal": auth.PrincipalFromContext(ctx),
		"User":      auth.UserFromContext(ctx),
	}
	for k, v := range values {
		data[k] = v
	}
	return data
}
