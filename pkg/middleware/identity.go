package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Vjossaab/commercify-backend/internal/domain"
)

// Identity headers set by the auth collaborator after token validation.
// This module performs no authentication of its own.
const (
	headerUserID = "X-User-Id"
	headerEmail  = "X-User-Email"
	headerRole   = "X-User-Role"

	identityKey = "identity"
)

func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		role := c.GetHeader(headerRole)
		if userID != "" && role != "" {
			c.Set(identityKey, domain.Identity{
				UserID: userID,
				Email:  c.GetHeader(headerEmail),
				Role:   role,
			})
		}
		c.Next()
	}
}

func IdentityFromContext(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}
