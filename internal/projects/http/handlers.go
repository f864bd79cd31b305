package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/internal/logging"
	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
)

const errInvalidBody = "invalid request body"

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, "Fetch failed", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) create(c *gin.Context) {
	body := domain.Patch{}
	if !bindObject(c, &body) {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), domain.CreateInputFromPatch(body))
	if err != nil {
		h.fail(c, "Create failed", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) update(c *gin.Context) {
	patch := domain.Patch{}
	if !bindObject(c, &patch) {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrInvalidPatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
	default:
		h.fail(c, "Update failed", err)
	}
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		h.fail(c, "Delete failed", err)
	}
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	logging.WithRequest(c.Request.Context(), h.logger).Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// bindObject decodes a JSON object body into dst. An empty body counts as {}.
// Anything else that is not a JSON object gets a 400.
func bindObject(c *gin.Context, dst any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return false
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return true
	}
	if raw[0] != '{' {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody})
		return false
	}
	return true
}
