package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/natah-genesis/portfolio-api/internal/auth"
)

// AdminKeyMiddleware rejects requests the guard does not authorize.
func AdminKeyMiddleware(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := guard.Authorize(c.GetHeader(auth.HeaderAdminKey))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, auth.ErrAdminKeyNotSet):
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		}
	}
}
