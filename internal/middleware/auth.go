package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/taskpad/internal/constants"
	apierrors "github.com/yukikurage/taskpad/internal/errors"
	"github.com/yukikurage/taskpad/internal/services"
)

// RequireSession rejects requests while no account is logged in.
func RequireSession(session *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := session.Current()
		if account == nil {
			apierrors.Unauthorized(c, apierrors.ErrCodeNoActiveSession, "Login required")
			c.Abort()
			return
		}

		// Store account ID in context for easy access in handlers
		c.Set(constants.ContextKeyAccountID, account.ID)
		c.Next()
	}
}

// GetAccountID retrieves the session's account ID from context
func GetAccountID(c *gin.Context) (string, bool) {
	accountID, exists := c.Get(constants.ContextKeyAccountID)
	if !exists {
		return "", false
	}
	id, ok := accountID.(string)
	return id, ok && id != ""
}
