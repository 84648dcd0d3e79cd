package service

import (
	"fmt"
	"testing"

	"ragtime/database/model"
	"ragtime/util/common"
	"ragtime/web/entity"

	"github.com/stretchr/testify/assert"
)

func TestCreateComment(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "A Title")

	commentService := CommentService{}
	comment, err := commentService.Create(alice, comp.Id, "nice track, see www.example.com")
	assert.NoError(t, err)
	assert.Contains(t, comment.BodyHTML, `<a href="http://www.example.com"`)
	// comment bodies get no mention rewriting
	c2, err := commentService.Create(alice, comp.Id, "thanks @alice")
	assert.NoError(t, err)
	assert.NotContains(t, c2.BodyHTML, "<a")
}

func TestCreateCommentValidation(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "A Title")
	commentService := CommentService{}

	_, err := commentService.Create(alice, comp.Id, "  ")
	assert.True(t, common.IsValidation(err))

	_, err = commentService.Create(alice, 999, "hello")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateCommentRequiresPermission(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "A Title")

	muted := registerUser(t, "muted")
	muted.Role = &model.Role{Name: "Muted", Permissions: model.PermissionFollow}

	commentService := CommentService{}
	_, err := commentService.Create(muted, comp.Id, "hello")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestThreadPageLastPage(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "A Title")
	commentService := CommentService{}

	for i := 0; i < 43; i++ {
		_, err := commentService.Create(alice, comp.Id, fmt.Sprintf("comment %02d", i))
		assert.NoError(t, err)
	}

	// page -1 resolves to the last page
	p, err := commentService.ThreadPage(comp.Id, -1, 20)
	assert.NoError(t, err)
	assert.Equal(t, 3, p.Page)
	views := p.Items.([]*entity.CommentView)
	assert.Len(t, views, 3)
	// oldest first within the thread
	assert.Equal(t, "comment 40", views[0].Body)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestThreadPageHidesDisabled(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	mod := grantRole(t, registerUser(t, "mod"), "Moderator")
	comp := createComposition(t, alice, "A Title")
	commentService := CommentService{}

	kept, err := commentService.Create(alice, comp.Id, "kept")
	assert.NoError(t, err)
	assert.False(t, kept.Disabled)
	hidden, err := commentService.Create(alice, comp.Id, "hidden")
	assert.NoError(t, err)

	assert.NoError(t, commentService.SetDisabled(mod, hidden.Id, true))

	p, err := commentService.ThreadPage(comp.Id, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.Total)
	views := p.Items.([]*entity.CommentView)
	assert.Equal(t, "kept", views[0].Body)

	// moderation listings still see everything
	all, err := commentService.AllPage(1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	// re-enable brings it back
	assert.NoError(t, commentService.SetDisabled(mod, hidden.Id, false))
	p, err = commentService.ThreadPage(comp.Id, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), p.Total)
}

func TestSetDisabledRequiresModerate(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "A Title")
	commentService := CommentService{}

	comment, err := commentService.Create(alice, comp.Id, "hello")
	assert.NoError(t, err)

	err = commentService.SetDisabled(alice, comment.Id, true)
	assert.ErrorIs(t, err, common.ErrForbidden)

	mod := grantRole(t, registerUser(t, "mod"), "Moderator")
	assert.NoError(t, commentService.SetDisabled(mod, comment.Id, true))
	assert.ErrorIs(t, commentService.SetDisabled(mod, 999, true), common.ErrNotFound)
}
