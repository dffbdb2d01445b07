package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/ierr"
	"github.com/borrzu/verify-service/internal/service"
)

const (
	authorizationHeader    = "Authorization"
	bearerPrefix           = "Bearer "
	accessClaimsContextKey = "accessClaims"
)

// AuthMiddleware guards the admin surface with bearer tokens issued by the
// auth service.
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			log.Debug("Authorization header is missing")
			_ = c.Error(fmt.Errorf("%w: authorization header required", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			log.Debug("Authorization header format is invalid")
			_ = c.Error(fmt.Errorf("%w: invalid authorization header format", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == "" {
			_ = c.Error(fmt.Errorf("%w: token missing", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			log.Warn("Token validation failed", zap.Error(err))
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(accessClaimsContextKey, claims)
		c.Next()
	}
}

func GetAccessClaims(c *gin.Context) *service.AccessClaims {
	value, exists := c.Get(accessClaimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*service.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}
