package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenAuthorizer validates an admin bearer token.
type TokenAuthorizer interface {
	Authorize(tokenString string) (jwt.MapClaims, error)
}

// AdminAuth rejects requests without a valid admin bearer token.
func AdminAuth(auth TokenAuthorizer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const BearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header must start with Bearer "})
			return
		}

		claims, err := auth.Authorize(strings.TrimSpace(authHeader[len(BearerSchema):]))
		if err != nil {
			log.Warn("admin token rejected",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set("userRole", claims["role"])
		c.Next()
	}
}
