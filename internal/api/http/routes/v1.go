package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/internal/auth"
	authmw "github.com/natah-genesis/portfolio-api/internal/auth/middleware"
	"github.com/natah-genesis/portfolio-api/internal/contact"
	"github.com/natah-genesis/portfolio-api/internal/media/cloudinary"
	projecthttp "github.com/natah-genesis/portfolio-api/internal/projects/http"
	"github.com/natah-genesis/portfolio-api/internal/projects/service"
)

type APIDeps struct {
	Guard    *auth.Guard
	Projects *service.ProjectService
	Signer   *cloudinary.Signer
	Contact  *contact.Links
	Logger   *zap.Logger
}

// RegisterAPI mounts the public and admin endpoints under api.
func RegisterAPI(api *gin.RouterGroup, dep APIDeps) {
	admin := authmw.AdminKeyMiddleware(dep.Guard)

	cloudinary.NewHandler(dep.Signer, dep.Logger).
		Register(api.Group("/cloudinary"), admin)

	projecthttp.New(dep.Projects, dep.Logger).
		Register(api.Group("/projects"), admin)

	contact.NewHandler(dep.Contact).
		Register(api.Group("/contact"))
}
