package authorization

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/shared/constants"
)

// RequireAdmin rejects requests whose authenticated role is not admin.
// Must run after the auth middleware that sets the role in the context.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(constants.ContextKeyUserRole)
		if userRole != string(RoleAdmin) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CanAccessResourceByOwnerID(userID uint, userRole UserRole, resourceOwnerID uint) bool {
	if userRole.IsAdmin() {
		return true
	}
	return userID == resourceOwnerID
}
