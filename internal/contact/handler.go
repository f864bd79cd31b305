package contact

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	links *Links
}

func NewHandler(links *Links) *Handler {
	return &Handler{links: links}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/whatsapp", h.whatsapp)
}

func (h *Handler) whatsapp(c *gin.Context) {
	c.Redirect(http.StatusFound, h.links.URL(c.Query("type")))
}
