package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/identity"
	apperrors "github.com/maasin/byahenow/pkg/errors"
	"github.com/maasin/byahenow/pkg/logger"
)

const identityKey = "identity"

// AuthMiddleware verifies the "Bearer <token>" header with the identity
// provider and stores the caller's identity on the context
func AuthMiddleware(provider identity.Provider, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthenticated(c, "Authorization header is required")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			abortUnauthenticated(c, "Authorization token not provided")
			return
		}

		id, err := provider.Verify(c.Request.Context(), token)
		if err != nil {
			log.Debug("Token rejected", logger.Err(err))
			abortUnauthenticated(c, "Invalid authorization token")
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity set by AuthMiddleware
func IdentityFrom(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": msg,
		"code":  apperrors.CodeUnauthenticated,
	})
}
