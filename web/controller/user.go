package controller

import (
	"net/http"
	"strconv"

	"ragtime/config"
	"ragtime/database/model"
	"ragtime/web/entity"
	"ragtime/web/middleware"

	"github.com/gin-gonic/gin"
)

// UserController serves profiles, profile editing and the follow graph.
type UserController struct {
	BaseController
}

func NewUserController(g *gin.RouterGroup) *UserController {
	a := &UserController{}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/user")

	g.GET("/:username", a.profile)
	g.GET("/:username/followers", a.followers)
	g.GET("/:username/following", a.following)

	protected := g.Group("")
	protected.Use(a.checkLogin)
	protected.POST("/profile", a.editProfile)
	protected.POST("/:username/follow", a.follow)
	protected.POST("/:username/unfollow", a.unfollow)

	admin := g.Group("")
	admin.Use(a.checkLogin, middleware.RequireAdmin())
	admin.POST("/:username/edit", a.adminEdit)
}

func (a *UserController) byUsername(c *gin.Context) (*model.User, bool) {
	user, err := a.userService.GetUserByUsername(c.Param("username"))
	if err != nil {
		jsonMsg(c, "find user", err)
		return nil, false
	}
	return user, true
}

func (a *UserController) profile(c *gin.Context) {
	user, ok := a.byUsername(c)
	if !ok {
		return
	}
	count, err := a.userService.CompositionCount(user.Id)
	if err != nil {
		jsonMsg(c, "profile", err)
		return
	}
	jsonObj(c, entity.NewUserView(user, count), nil)
}

func (a *UserController) followers(c *gin.Context) {
	user, ok := a.byUsername(c)
	if !ok {
		return
	}
	page, perPage := parsePage(c, config.GetFollowersPerPage())
	p, err := a.userService.FollowersPage(user.Id, page, perPage)
	jsonObj(c, p, err)
}

func (a *UserController) following(c *gin.Context) {
	user, ok := a.byUsername(c)
	if !ok {
		return
	}
	page, perPage := parsePage(c, config.GetFollowersPerPage())
	p, err := a.userService.FollowingPage(user.Id, page, perPage)
	jsonObj(c, p, err)
}

type profileForm struct {
	Name     string `json:"name" form:"name"`
	Location string `json:"location" form:"location"`
	Bio      string `json:"bio" form:"bio"`
}

func (a *UserController) editProfile(c *gin.Context) {
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	user := loginUser(c)
	err := a.userService.UpdateProfile(user.Id, form.Name, form.Location, form.Bio)
	jsonMsg(c, "update profile", err)
}

func (a *UserController) follow(c *gin.Context) {
	actor := loginUser(c)
	if !actor.Can(model.PermissionFollow) {
		pureJsonMsg(c, http.StatusForbidden, false, "not allowed to follow")
		return
	}
	target, ok := a.byUsername(c)
	if !ok {
		return
	}
	err := a.userService.Follow(actor.Id, target.Id)
	jsonMsg(c, "follow", err)
}

func (a *UserController) unfollow(c *gin.Context) {
	actor := loginUser(c)
	if !actor.Can(model.PermissionFollow) {
		pureJsonMsg(c, http.StatusForbidden, false, "not allowed to follow")
		return
	}
	target, ok := a.byUsername(c)
	if !ok {
		return
	}
	err := a.userService.Unfollow(actor.Id, target.Id)
	jsonMsg(c, "unfollow", err)
}

type adminUserForm struct {
	Username  string `json:"username" form:"username"`
	Email     string `json:"email" form:"email"`
	Confirmed bool   `json:"confirmed" form:"confirmed"`
	RoleId    int    `json:"roleId" form:"roleId"`
	Name      string `json:"name" form:"name"`
	Location  string `json:"location" form:"location"`
	Bio       string `json:"bio" form:"bio"`
}

func (a *UserController) adminEdit(c *gin.Context) {
	var form adminUserForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	target, ok := a.byUsername(c)
	if !ok {
		return
	}
	err := a.userService.AdminUpdateUser(loginUser(c), target.Id,
		form.Username, form.Email, form.Confirmed, form.RoleId,
		form.Name, form.Location, form.Bio)
	jsonMsg(c, "update user", err)
}

// parseId reads an integer path parameter.
func parseId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid "+name)
		return 0, false
	}
	return id, true
}
