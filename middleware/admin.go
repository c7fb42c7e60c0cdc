package middleware

import (
	"net/http"

	"vivaah/models"

	"github.com/gin-gonic/gin"
)

// RequireAdmin gates a route group to admin and moderator roles. Must run
// after JWTAuthMiddleware, which puts userRole in the context.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("userRole")
		if role != models.RoleAdmin && role != models.RoleModerator {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
