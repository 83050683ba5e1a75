package middleware

import (
	"net/http"

	"hospital-bed-management/internal/service"
	"hospital-bed-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequireCapability gates a route on one capability. The check runs once per
// operation at the engine boundary; a caller lacking the capability receives
// Forbidden and no state change occurs.
func RequireCapability(checker service.CapabilityChecker, capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		if !checker.Allows(role.(string), capability) {
			utils.ErrorResponse(c, http.StatusForbidden, "Missing capability: "+capability)
			c.Abort()
			return
		}

		c.Next()
	}
}
