package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/natah-genesis/portfolio-api/config"
)

type CloudinaryStatus struct {
	CloudNameSet bool `json:"cloud_name_set"`
	APIKeySet    bool `json:"api_key_set"`
	APISecretSet bool `json:"api_secret_set"`
}

type StoreStatus struct {
	Driver string `json:"driver"`
	Status string `json:"status"`
}

type HealthResponse struct {
	OK          bool             `json:"ok"`
	Env         string           `json:"env"`
	PublicAdmin bool             `json:"publicAdmin"`
	Version     string           `json:"version"`
	Store       StoreStatus      `json:"store"`
	Cloudinary  CloudinaryStatus `json:"cloudinary"`
}

// StoreProbe reports whether the project store can be reached.
type StoreProbe func(ctx context.Context) error

type HealthHandler struct {
	cfg   *config.Config
	probe StoreProbe
}

func NewHealthHandler(cfg *config.Config, probe StoreProbe) *HealthHandler {
	return &HealthHandler{cfg: cfg, probe: probe}
}

// HealthCheck reports configuration presence as booleans only; no secret
// value is ever echoed.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	storeStatus := "unknown"
	if h.probe != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.probe(pingCtx); err != nil {
			storeStatus = "down"
		} else {
			storeStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		OK:          true,
		Env:         h.cfg.App.Environment,
		PublicAdmin: h.cfg.Admin.Public,
		Version:     h.cfg.App.Version,
		Store: StoreStatus{
			Driver: h.cfg.Store.Driver,
			Status: storeStatus,
		},
		Cloudinary: CloudinaryStatus{
			CloudNameSet: h.cfg.Cloudinary.CloudName != "",
			APIKeySet:    h.cfg.Cloudinary.APIKey != "",
			APISecretSet: h.cfg.Cloudinary.APISecret != "",
		},
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
