package cloudinary

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/internal/logging"
)

type Handler struct {
	signer *Signer
	logger *zap.Logger
}

func NewHandler(signer *Signer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{signer: signer, logger: logger}
}

// Register attaches POST /sign behind the admin middleware.
func (h *Handler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.POST("/sign", admin, h.sign)
}

func (h *Handler) sign(c *gin.Context) {
	var req SignRequest
	// An empty body, chunked or not, signs with no options.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	log := logging.WithRequest(c.Request.Context(), h.logger)

	out, err := h.signer.Sign(req)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			log.Warn("cloudinary config missing", zap.Strings("missing", cfgErr.Missing))
			c.JSON(http.StatusInternalServerError, gin.H{"error": cfgErr.Error()})
			return
		}
		log.Error("cloudinary sign failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cloudinary sign failed"})
		return
	}

	log.Info("upload signed",
		zap.String("folder", req.Folder),
		zap.Int64("timestamp", out.Timestamp),
	)
	c.JSON(http.StatusOK, out)
}
