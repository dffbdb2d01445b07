package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/secretkey"
)

const (
	// SecretKeyHeader carries the raw secret key and is the preferred
	// credential for verification endpoints.
	SecretKeyHeader = "X-Borrzu-Key"

	keyOwnerContextKey = "keyOwnerUserID"
)

var (
	errNoCredential = errors.New("no api credential presented")

	// errForeignToken marks a bearer value shaped like a three-segment
	// structured token. That format belongs to the admin token mechanism
	// and is never matched against stored keys.
	errForeignToken = errors.New("bearer token belongs to another authentication scheme")
)

// KeyVerifier resolves a presented raw key value to its owner.
type KeyVerifier interface {
	VerifyValue(ctx context.Context, value string) (*secretkey.SecretKey, error)
}

// keyStrategy extracts a candidate key value from a request. Strategies
// run in declaration order; the first one that yields a value wins.
type keyStrategy struct {
	name    string
	extract func(c *gin.Context) (string, error)
}

var keyStrategies = []keyStrategy{
	{
		name: "secret-key-header",
		extract: func(c *gin.Context) (string, error) {
			value := c.GetHeader(SecretKeyHeader)
			if value == "" {
				return "", errNoCredential
			}
			return value, nil
		},
	},
	{
		name: "bearer-token",
		extract: func(c *gin.Context) (string, error) {
			header := c.GetHeader(authorizationHeader)
			if !strings.HasPrefix(header, bearerPrefix) {
				return "", errNoCredential
			}
			value := strings.TrimPrefix(header, bearerPrefix)
			if value == "" {
				return "", errNoCredential
			}
			if strings.Count(value, ".") == 2 {
				return "", errForeignToken
			}
			return value, nil
		},
	},
}

// KeyAuthMiddleware authenticates verification requests against stored
// secret keys. Credential sources are tried in a fixed order: the
// dedicated key header first, then a bearer token that does not look like
// a structured admin token.
func KeyAuthMiddleware(verifier KeyVerifier, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("KeyAuthMiddleware")
	return func(c *gin.Context) {
		var value string
		var strategyName string

		for _, strategy := range keyStrategies {
			candidate, err := strategy.extract(c)
			if errors.Is(err, errNoCredential) {
				continue
			}
			if err != nil {
				log.Warn("Credential rejected", zap.String("strategy", strategy.name), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
				return
			}
			value = candidate
			strategyName = strategy.name
			break
		}

		if value == "" {
			log.Debug("No api credential presented")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}

		key, err := verifier.VerifyValue(c.Request.Context(), value)
		if err != nil {
			if errors.Is(err, secretkey.ErrNotFound) {
				log.Warn("Presented key matches no user", zap.String("strategy", strategyName))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid API key"})
				return
			}
			log.Error("Failed to verify api key", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during API key validation"})
			return
		}

		c.Set(keyOwnerContextKey, key.UserID)
		log.Debug("API key validated", zap.Int64("user_id", key.UserID), zap.String("strategy", strategyName))
		c.Next()
	}
}

// GetKeyOwner returns the user id the authenticated key belongs to, or 0.
func GetKeyOwner(c *gin.Context) int64 {
	value, exists := c.Get(keyOwnerContextKey)
	if !exists {
		return 0
	}
	id, ok := value.(int64)
	if !ok {
		return 0
	}
	return id
}
