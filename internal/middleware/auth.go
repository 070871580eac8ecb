package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// Identity extracts the authenticated user from the X-User-ID header set by
// the authenticating proxy. Requests without it proceed unauthenticated;
// permission checks deny them later.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				c.Set(UserIDKey, id)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// AdminAPIKey gates the cross-tenant administrative surface behind a static
// API key, compared against its bcrypt hash. An empty hash disables the
// surface entirely.
func AdminAPIKey(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "ADMIN_DISABLED",
				"message": "Administrative API is not configured",
			})
			return
		}

		key := c.GetHeader("X-Admin-API-Key")
		if key == "" || bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "ADMIN_UNAUTHORIZED",
				"message": "Valid administrative API key required",
			})
			return
		}
		c.Next()
	}
}
