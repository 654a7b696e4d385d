package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const ServiceTokenHeader = "X-Service-Token"

// ServiceAuthMiddleware gates every flag route behind a shared service
// secret. The comparison is constant-time; the check runs before any core
// logic so an unauthenticated request never touches the store.
func ServiceAuthMiddleware(serviceToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(ServiceTokenHeader)

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Service token is required"})
			return
		}

		if serviceToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(serviceToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}
