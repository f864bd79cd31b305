package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/config"
	httpapi "github.com/natah-genesis/portfolio-api/internal/api/http"
	"github.com/natah-genesis/portfolio-api/internal/api/http/middleware"
	"github.com/natah-genesis/portfolio-api/internal/api/http/routes"
	"github.com/natah-genesis/portfolio-api/internal/auth"
	"github.com/natah-genesis/portfolio-api/internal/contact"
	"github.com/natah-genesis/portfolio-api/internal/media/cloudinary"
	"github.com/natah-genesis/portfolio-api/internal/metrics"
	"github.com/natah-genesis/portfolio-api/internal/projects/service"
)

type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Projects *service.ProjectService
	Probe    httpapi.StoreProbe
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config

	r := gin.New()
	r.Use(httpapi.Recovery(dep.Logger))
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(secure.New(securityConfig()))
	r.Use(cors.New(corsConfig(cfg.Server.ClientOrigin)))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.NoRoute(httpapi.NotFound)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")

	healthHandler := httpapi.NewHealthHandler(cfg, dep.Probe)
	healthHandler.RegisterRoutes(api)

	routes.RegisterAPI(api, routes.APIDeps{
		Guard:    auth.NewGuard(cfg.Admin.Public, cfg.Admin.APIKey),
		Projects: dep.Projects,
		Signer:   cloudinary.NewSigner(cfg.Cloudinary, nil),
		Contact:  contact.NewLinks(cfg.Contact.WhatsAppNumber),
		Logger:   dep.Logger,
	})

	return r
}

func corsConfig(origin string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Admin-Key", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
	}
	if origin == "" || origin == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = []string{origin}
	}
	return c
}

// securityConfig sets helmet-style response headers. HSTS is only sent on
// requests that arrived over TLS or through a proxy that says so.
func securityConfig() secure.Config {
	return secure.Config{
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		ReferrerPolicy:          "no-referrer",
		ContentSecurityPolicy:   "default-src 'self'; frame-ancestors 'self'; object-src 'none'",
		SSLProxyHeaders:         map[string]string{"X-Forwarded-Proto": "https"},
	}
}
