package controller

import (
	"net/http"

	"ragtime/config"
	"ragtime/database/model"
	"ragtime/web/entity"
	"ragtime/web/middleware"
	"ragtime/web/service"
	"ragtime/web/session"

	"github.com/gin-gonic/gin"
)

// CompositionController serves the feeds, composition pages and comment
// threads of the web surface.
type CompositionController struct {
	BaseController

	compositionService service.CompositionService
	commentService     service.CommentService
}

func NewCompositionController(g *gin.RouterGroup) *CompositionController {
	a := &CompositionController{}
	a.initRouter(g)
	return a
}

func (a *CompositionController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.home)
	g.GET("/composition/:slug", a.bySlug)
	g.GET("/composition/:slug/comments", a.comments)

	protected := g.Group("")
	protected.Use(a.checkLogin)
	protected.POST("/composition", a.create)
	protected.POST("/composition/:slug/edit", a.edit)
	protected.POST("/composition/:slug/comments", a.comment)
	protected.GET("/all", a.showAll)
	protected.GET("/followed", a.showFollowed)

	moderate := g.Group("/moderate")
	moderate.Use(a.checkLogin, middleware.RequirePermission(model.PermissionModerate))
	moderate.GET("/comments", a.moderationQueue)
	moderate.POST("/comments/:id/enable", a.enableComment)
	moderate.POST("/comments/:id/disable", a.disableComment)
}

// home serves the landing feed. Logged-in users with the followed-only
// preference set get the feed restricted to artists they follow.
func (a *CompositionController) home(c *gin.Context) {
	userId := session.GetLoginUserId(c)
	followedOnly := userId != 0 && session.ShowFollowed(c)
	page, perPage := parsePage(c, config.GetCompsPerPage())
	p, err := a.compositionService.FeedPage(userId, followedOnly, page, perPage)
	jsonObj(c, p, err)
}

// showAll clears the followed-only preference and serves the full feed.
func (a *CompositionController) showAll(c *gin.Context) {
	session.SetShowFollowed(c, false)
	a.home(c)
}

// showFollowed sets the followed-only preference and serves the feed.
func (a *CompositionController) showFollowed(c *gin.Context) {
	session.SetShowFollowed(c, true)
	a.home(c)
}

func (a *CompositionController) bySlug(c *gin.Context) {
	comp, err := a.compositionService.GetBySlug(c.Param("slug"))
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

type compositionForm struct {
	ReleaseType *model.ReleaseType `json:"releaseType" form:"releaseType"`
	Title       *string            `json:"title" form:"title"`
	Description *string            `json:"description" form:"description"`
}

func (a *CompositionController) create(c *gin.Context) {
	var form compositionForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	comp, err := a.compositionService.Create(loginUser(c),
		form.ReleaseType, form.Title, form.Description)
	if err != nil {
		jsonMsg(c, "create composition", err)
		return
	}
	jsonObj(c, entity.NewCompositionView(comp, 0), nil)
}

func (a *CompositionController) edit(c *gin.Context) {
	comp, err := a.compositionService.GetBySlug(c.Param("slug"))
	if err != nil {
		jsonMsg(c, "find composition", err)
		return
	}
	var form compositionForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	comp, err = a.compositionService.Update(loginUser(c), comp.Id,
		form.ReleaseType, form.Title, form.Description)
	if err != nil {
		jsonMsg(c, "update composition", err)
		return
	}
	count, _ := a.compositionService.CommentCount(comp.Id)
	jsonObj(c, entity.NewCompositionView(comp, count), nil)
}

// comments serves a composition's visible thread, oldest first. page=-1
// resolves to the last page so a fresh comment is visible right away.
func (a *CompositionController) comments(c *gin.Context) {
	comp, err := a.compositionService.GetBySlug(c.Param("slug"))
	if err != nil {
		jsonMsg(c, "find composition", err)
		return
	}
	page, perPage := parsePage(c, config.GetCommentsPerPage())
	p, err := a.commentService.ThreadPage(comp.Id, page, perPage)
	jsonObj(c, p, err)
}

type commentForm struct {
	Body string `json:"body" form:"body"`
}

func (a *CompositionController) comment(c *gin.Context) {
	comp, err := a.compositionService.GetBySlug(c.Param("slug"))
	if err != nil {
		jsonMsg(c, "find composition", err)
		return
	}
	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}
	comment, err := a.commentService.Create(loginUser(c), comp.Id, form.Body)
	if err != nil {
		jsonMsg(c, "post comment", err)
		return
	}
	jsonObj(c, entity.NewCommentView(comment), nil)
}

func (a *CompositionController) moderationQueue(c *gin.Context) {
	page, perPage := parsePage(c, config.GetCommentsPerPage())
	p, err := a.commentService.AllPage(page, perPage)
	jsonObj(c, p, err)
}

func (a *CompositionController) enableComment(c *gin.Context) {
	a.setCommentDisabled(c, false)
}

func (a *CompositionController) disableComment(c *gin.Context) {
	a.setCommentDisabled(c, true)
}

func (a *CompositionController) setCommentDisabled(c *gin.Context, disabled bool) {
	id, ok := parseId(c, "id")
	if !ok {
		return
	}
	err := a.commentService.SetDisabled(loginUser(c), id, disabled)
	jsonMsg(c, "moderate comment", err)
}
