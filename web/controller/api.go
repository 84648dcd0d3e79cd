package controller

import (
	"fmt"
	"net/http"

	"ragtime/config"
	"ragtime/web/entity"
	"ragtime/web/middleware"
	"ragtime/web/service"

	"github.com/gin-gonic/gin"
)

// APIController serves the versioned JSON API. Every endpoint except the
// token grant requires a bearer token.
type APIController struct {
	userService        service.UserService
	tokenService       service.TokenService
	compositionService service.CompositionService
	commentService     service.CommentService
}

func NewAPIController(g *gin.RouterGroup) *APIController {
	a := &APIController{}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/api/v1")

	g.POST("/tokens/", a.issueToken)

	auth := g.Group("")
	auth.Use(middleware.BearerAuth(&a.userService, &a.tokenService))

	auth.GET("/users/:id", a.getUser)
	auth.GET("/users/:id/compositions/", a.userCompositions)
	auth.GET("/users/:id/timeline/", a.userTimeline)
	auth.GET("/users/:id/followers/", a.userFollowers)
	auth.GET("/users/:id/following/", a.userFollowing)

	auth.GET("/compositions/", a.compositions)
	auth.POST("/compositions/", a.createComposition)
	auth.GET("/compositions/:id", a.getComposition)
	auth.PUT("/compositions/:id", a.updateComposition)
	auth.GET("/compositions/:id/comments/", a.compositionComments)
	auth.POST("/compositions/:id/comments/", a.createComment)

	auth.GET("/comments/", a.comments)
	auth.GET("/comments/:id", a.getComment)
}

type tokenForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// issueToken exchanges email/password credentials for a bearer token.
func (a *APIController) issueToken(c *gin.Context) {
	var form tokenForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	user := a.userService.CheckUser(form.Email, form.Password)
	if user == nil {
		pureJsonMsg(c, http.StatusUnauthorized, false, "wrong email or password")
		return
	}
	token, err := a.tokenService.GenerateAuthToken(user.Id)
	if err != nil {
		jsonMsg(c, "issue token", err)
		return
	}
	jsonObj(c, gin.H{
		"token":     token,
		"expiresIn": int(service.AuthTokenTTL.Seconds()),
	}, nil)
}

func (a *APIController) getUser(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	user, err := a.userService.GetUser(id)
	if err != nil {
		jsonMsg(c, "find user", err)
		return
	}
	count, err := a.userService.CompositionCount(user.Id)
	if err != nil {
		jsonMsg(c, "find user", err)
		return
	}
	jsonObj(c, entity.NewUserView(user, count), nil)
}

func (a *APIController) userCompositions(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	page, perPage := parsePage(c, config.GetCompsPerPage())
	p, err := a.compositionService.UserCompositionsPage(id, page, perPage)
	a.pagedObj(c, p, err)
}

// userTimeline serves the compositions of every artist the user follows,
// the user's own included.
func (a *APIController) userTimeline(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	page, perPage := parsePage(c, config.GetCompsPerPage())
	p, err := a.compositionService.FeedPage(id, true, page, perPage)
	a.pagedObj(c, p, err)
}

func (a *APIController) userFollowers(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	page, perPage := parsePage(c, config.GetFollowersPerPage())
	p, err := a.userService.FollowersPage(id, page, perPage)
	a.pagedObj(c, p, err)
}

func (a *APIController) userFollowing(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	page, perPage := parsePage(c, config.GetFollowersPerPage())
	p, err := a.userService.FollowingPage(id, page, perPage)
	a.pagedObj(c, p, err)
}

func (a *APIController) compositions(c *gin.Context) {
	page, perPage := parsePage(c, config.GetCompsPerPage())
	p, err := a.compositionService.FeedPage(0, false, page, perPage)
	a.pagedObj(c, p, err)
}

func (a *APIController) getComposition(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	comp, err := a.compositionService.Get(id)
	if err != nil {
		jsonMsg(c, "find composition", err)
		return
	}
	count, err := a.compositionService.CommentCount(comp.Id)
	if err != nil {
		jsonMsg(c, "find composition", err)
		return
	}
	jsonObj(c, entity.NewCompositionView(comp, count), nil)
}

func (a *APIController) createComposition(c *gin.Context) {
	var form compositionForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	comp, err := a.compositionService.Create(middleware.GetLoginUser(c),
		form.ReleaseType, form.Title, form.Description)
	if err != nil {
		jsonMsg(c, "create composition", err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/compositions/%d", comp.Id))
	c.JSON(http.StatusCreated, entity.Msg{
		Success: true,
		Obj:     entity.NewCompositionView(comp, 0),
	})
}

func (a *APIController) updateComposition(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	var form compositionForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	comp, err := a.compositionService.Update(middleware.GetLoginUser(c), id,
		form.ReleaseType, form.Title, form.Description)
	if err != nil {
		jsonMsg(c, "update composition", err)
		return
	}
	count, _ := a.compositionService.CommentCount(comp.Id)
	jsonObj(c, entity.NewCompositionView(comp, count), nil)
}

func (a *APIController) compositionComments(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	page, perPage := parsePage(c, config.GetCommentsPerPage())
	p, err := a.commentService.CompositionAllPage(id, page, perPage)
	a.pagedObj(c, p, err)
}

func (a *APIController) createComment(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	comment, err := a.commentService.Create(middleware.GetLoginUser(c), id, form.Body)
	if err != nil {
		jsonMsg(c, "post comment", err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/comments/%d", comment.Id))
	c.JSON(http.StatusCreated, entity.Msg{
		Success: true,
		Obj:     entity.NewCommentView(comment),
	})
}

func (a *APIController) comments(c *gin.Context) {
	page, perPage := parsePage(c, config.GetCommentsPerPage())
	p, err := a.commentService.AllPage(page, perPage)
	a.pagedObj(c, p, err)
}

func (a *APIController) getComment(c *gin.Context) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	comment, err := a.commentService.Get(id)
	if err != nil {
		jsonMsg(c, "find comment", err)
		return
	}
	jsonObj(c, entity.NewCommentView(comment), nil)
}

// pagedObj fills the prev/next links from the request URL before replying.
func (a *APIController) pagedObj(c *gin.Context, p *entity.Page, err error) {
	if err == nil && p != nil {
		base := c.Request.URL.Path
		if p.HasPrev {
			p.Prev = fmt.Sprintf("%s?page=%d&perPage=%d", base, p.Page-1, p.PerPage)
		}
		if p.HasNext {
			p.Next = fmt.Sprintf("%s?page=%d&perPage=%d", base, p.Page+1, p.PerPage)
		}
	}
	jsonObj(c, p, err)
}

