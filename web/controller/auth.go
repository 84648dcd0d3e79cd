package controller

import (
	"net/http"

	"ragtime/config"
	"ragtime/logger"
	"ragtime/web/entity"
	"ragtime/web/service"
	"ragtime/web/session"

	"github.com/gin-gonic/gin"
)

// AuthController serves registration, login and account confirmation.
type AuthController struct {
	BaseController

	userService  service.UserService
	tokenService service.TokenService
	notifService service.NotificationService
}

func NewAuthController(g *gin.RouterGroup) *AuthController {
	a := &AuthController{}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/auth")

	g.POST("/register", a.register)
	g.POST("/login", a.login)
	g.POST("/logout", a.logout)

	protected := g.Group("")
	protected.Use(a.checkLogin)
	protected.GET("/confirm/:token", a.confirm)
	protected.POST("/confirm", a.resendConfirmation)
}

type registerForm struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (a *AuthController) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	user, err := a.userService.Register(form.Username, form.Email, form.Password)
	if err != nil {
		jsonMsg(c, "register", err)
		return
	}
	session.SetLoginUser(c, user.Id)
	count, _ := a.userService.CompositionCount(user.Id)
	jsonObj(c, entity.NewUserView(user, count), nil)
}

type loginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember" form:"remember"`
}

func (a *AuthController) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	user := a.userService.CheckUser(form.Email, form.Password)
	if user == nil {
		logger.Infof("wrong email or password: \"%s\"", form.Email)
		pureJsonMsg(c, http.StatusUnauthorized, false, "wrong email or password")
		return
	}
	session.SetLoginUser(c, user.Id)
	if form.Remember {
		session.SetMaxAge(c, config.GetSessionMaxAge())
	}
	logger.Infof("%s logged in", user.Username)
	count, _ := a.userService.CompositionCount(user.Id)
	jsonObj(c, entity.NewUserView(user, count), nil)
}

func (a *AuthController) logout(c *gin.Context) {
	session.ClearSession(c)
	jsonMsg(c, "logout", nil)
}

func (a *AuthController) confirm(c *gin.Context) {
	user := loginUser(c)
	if user.Confirmed {
		jsonMsg(c, "already confirmed", nil)
		return
	}
	if !a.userService.Confirm(user.Id, c.Param("token")) {
		pureJsonMsg(c, http.StatusBadRequest, false, "the confirmation link is invalid or has expired")
		return
	}
	jsonMsg(c, "account confirmed", nil)
}

func (a *AuthController) resendConfirmation(c *gin.Context) {
	user := loginUser(c)
	if user.Confirmed {
		jsonMsg(c, "already confirmed", nil)
		return
	}
	token, err := a.tokenService.GenerateConfirmationToken(user.Id)
	if err != nil {
		jsonMsg(c, "resend confirmation", err)
		return
	}
	a.notifService.SendConfirmation(user, token)
	jsonMsg(c, "a new confirmation email has been sent", nil)
}
