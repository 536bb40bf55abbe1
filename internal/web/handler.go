// Package web serves the site's static content pages.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.home)
	r.GET("/contests/", h.contests)
}

func (h *Handler) home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", Data(c, "", nil))
}

func (h *Handler) contests(c *gin.Context) {
	c.HTML(http.StatusOK, "contests.html", Data(c, "Contests", nil))
}
