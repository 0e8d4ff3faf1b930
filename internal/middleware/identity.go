package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/talhabaigg/tsd3pl/internal/models"
	"github.com/talhabaigg/tsd3pl/internal/repository"
)

// CurrentUserKey is the gin context key holding the authenticated user.
const CurrentUserKey = "current_user"

// Identity resolves the caller from the X-Auth-User-ID header set by the
// upstream authentication proxy. Requests without the header proceed as
// guests; routes that need an account use RequireUser or RequireAdmin.
func Identity(users repository.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-Auth-User-ID")
		if header == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
			return
		}
		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// RequireUser rejects guests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects guests and non-admin users.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are not authorized to perform this action."})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the context, or nil for
// guests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
