// Package controller provides the HTTP handlers of the ragtime web and API
// surfaces: authentication, profiles, the follow graph, compositions and
// comment threads.
package controller

import (
	"net/http"

	"ragtime/config"
	"ragtime/database/model"
	"ragtime/web/middleware"
	"ragtime/web/service"
	"ragtime/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the session login check shared by all
// session-backed controllers.
type BaseController struct {
	userService service.UserService
}

// checkLogin verifies the session, loads the user onto the request context
// and refreshes their last-seen timestamp.
func (a *BaseController) checkLogin(c *gin.Context) {
	userId := session.GetLoginUserId(c)
	if userId == 0 {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, "login required")
		} else {
			c.Redirect(http.StatusTemporaryRedirect, config.GetBasePath()+"auth/login")
		}
		c.Abort()
		return
	}
	user, err := a.userService.GetUser(userId)
	if err != nil {
		session.ClearSession(c)
		pureJsonMsg(c, http.StatusUnauthorized, false, "login required")
		c.Abort()
		return
	}
	middleware.SetLoginUser(c, user)
	// last_seen refresh is best effort
	_ = a.userService.Ping(user.Id)
	c.Next()
}

// loginUser returns the user loaded by checkLogin or BearerAuth.
func loginUser(c *gin.Context) *model.User {
	return middleware.GetLoginUser(c)
}
