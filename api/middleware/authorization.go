package middleware

import (
	"net/http"

	"github.com/abofield/abofield/api/common"
	"github.com/gin-gonic/gin"
)

// RequireAdmin rejects authenticated users without the admin flag.
//
// allowAll is a development-only override that treats every authenticated
// user as an admin; it must never be enabled in production.
func RequireAdmin(allowAll bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdminVal, exists := c.Get(ContextIsAdminKey)
		if !exists {
			common.RespondError(c, http.StatusForbidden, "Access denied. Not authenticated.")
			c.Abort()
			return
		}

		isAdmin, ok := isAdminVal.(bool)
		if !ok {
			common.RespondError(c, http.StatusInternalServerError, "Internal error: invalid admin flag in context.")
			c.Abort()
			return
		}

		if !isAdmin && !allowAll {
			common.RespondError(c, http.StatusForbidden, "Access denied. Administrator privileges required.")
			c.Abort()
			return
		}

		c.Next()
	}
}
