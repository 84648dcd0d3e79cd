package middleware

import (
	"net/http"

	"ragtime/database/model"

	"github.com/gin-gonic/gin"
)

// RequirePermission aborts the request unless the context user holds the
// given permission bit. Must run after an authentication middleware that
// placed the user on the context.
func RequirePermission(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetLoginUser(c)
		if user == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !user.Can(perm) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts the request unless the context user is an
// administrator.
func RequireAdmin() gin.HandlerFunc {
	return RequirePermission(model.PermissionAdmin)
}
