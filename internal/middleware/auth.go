package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/taskdesk/taskdesk-api/internal/constants"
	apierrors "github.com/taskdesk/taskdesk-api/internal/errors"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"github.com/taskdesk/taskdesk-api/internal/services"
)

// RequireAuth authenticates the request via the session cookie or a bearer
// token, resolves the identity to a live user record, and stores it in the
// request context. Requests that fail either step never reach a handler.
func RequireAuth(userRepo repository.UserRepository, tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			userID, ok = bearerUserID(c, tokens)
		}
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			// Token or session referencing a deleted user is not a live
			// identity.
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin allows only users with the admin role. Must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			apierrors.Forbidden(c, "Administrator role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

func sessionUserID(c *gin.Context) (uint64, bool) {
	session := sessions.Default(c)
	raw := session.Get(constants.ContextKeyUserID)
	if raw == nil {
		return 0, false
	}

	switch v := raw.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

func bearerUserID(c *gin.Context, tokens *services.TokenService) (uint64, bool) {
	if tokens == nil {
		return 0, false
	}

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, false
	}

	userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return 0, false
	}
	return userID, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint64)
	return id, ok
}

// GetCurrentUser retrieves the resolved user record from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}

	user, ok := raw.(*models.User)
	return user, ok
}
