package http

import (
	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc    *service.ProjectService
	logger *zap.Logger
}

func New(svc *service.ProjectService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}
