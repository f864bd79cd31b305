package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/internal/logging"
)

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// NotFound answers JSON under /api/ and plain text elsewhere.
func NotFound(c *gin.Context) {
	path := c.Request.URL.Path
	if isAPIPath(path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "path": path})
		return
	}
	c.String(http.StatusNotFound, "Not Found")
}

// Recovery turns a panic into a 500 and logs it.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		msg := fmt.Sprint(recovered)
		if err, ok := recovered.(error); ok {
			msg = err.Error()
		}

		logging.WithRequest(c.Request.Context(), logger).Error("server error",
			zap.String("path", c.Request.URL.Path),
			zap.String("panic", msg),
		)

		if isAPIPath(c.Request.URL.Path) {
			if msg == "" {
				msg = "Server error"
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		c.String(http.StatusInternalServerError, "Server error")
		c.Abort()
	})
}
