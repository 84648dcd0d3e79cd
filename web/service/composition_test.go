package service

import (
	"fmt"
	"strings"
	"testing"

	"ragtime/database/model"
	"ragtime/util/common"
	"ragtime/web/entity"

	"github.com/stretchr/testify/assert"
)

func createComposition(t *testing.T, artist *model.User, title string) *model.Composition {
	t.Helper()
	compositionService := CompositionService{}
	releaseType := model.ReleaseSingle
	description := "a description"
	comp, err := compositionService.Create(artist, &releaseType, &title, &description)
	if err != nil {
		t.Fatal("create composition failed:", err)
	}
	return comp
}

func TestCreateCompositionSlug(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "Man, Oh Man!")

	assert.Equal(t, fmt.Sprintf("%d-man-oh-man-", comp.Id), comp.Slug)

	compositionService := CompositionService{}
	found, err := compositionService.GetBySlug(comp.Slug)
	assert.NoError(t, err)
	assert.Equal(t, comp.Id, found.Id)
}

func TestCreateCompositionValidation(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	compositionService := CompositionService{}

	releaseType := model.ReleaseSingle
	badType := model.ReleaseType(9)
	title := "A Title"
	description := "text"

	_, err := compositionService.Create(alice, nil, &title, &description)
	assert.True(t, common.IsValidation(err))
	_, err = compositionService.Create(alice, &badType, &title, &description)
	assert.True(t, common.IsValidation(err))
	_, err = compositionService.Create(alice, &releaseType, nil, &description)
	assert.True(t, common.IsValidation(err))
	_, err = compositionService.Create(alice, &releaseType, &title, nil)
	assert.True(t, common.IsValidation(err))

	var verr *common.ValidationError
	_, err = compositionService.Create(alice, &releaseType, &title, nil)
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)
}

func TestCreateCompositionRequiresPublish(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	alice.Role = &model.Role{Name: "Muted", Permissions: model.PermissionFollow}

	compositionService := CompositionService{}
	releaseType := model.ReleaseSingle
	title := "A Title"
	description := "text"
	_, err := compositionService.Create(alice, &releaseType, &title, &description)
	assert.ErrorIs(t, err, common.ErrForbidden)

	// nothing was written
	p, err := compositionService.FeedPage(0, false, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), p.Total)
}

func TestDescriptionSanitized(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "A Title")

	compositionService := CompositionService{}
	desc := `<script>alert("x")</script> visit www.example.com`
	updated, err := compositionService.Update(alice, comp.Id, nil, nil, &desc)
	assert.NoError(t, err)

	assert.NotContains(t, updated.DescriptionHTML, "<script>")
	assert.Contains(t, updated.DescriptionHTML, `<a href="http://www.example.com"`)
	// raw text is kept verbatim
	assert.Equal(t, desc, updated.Description)
}

func TestDescriptionMentions(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "A Title")

	compositionService := CompositionService{}
	desc := "shout out to @bob for the mix"
	updated, err := compositionService.Update(alice, comp.Id, nil, nil, &desc)
	assert.NoError(t, err)

	// mentions link without an existence check
	assert.Contains(t, updated.DescriptionHTML, `/user/bob"`)
	assert.Contains(t, updated.DescriptionHTML, ">@bob</a>")
}

func TestUpdateRegeneratesSlug(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	comp := createComposition(t, alice, "First Title")
	oldSlug := comp.Slug

	compositionService := CompositionService{}
	newTitle := "Second Title"
	updated, err := compositionService.Update(alice, comp.Id, nil, &newTitle, nil)
	assert.NoError(t, err)
	assert.NotEqual(t, oldSlug, updated.Slug)
	assert.True(t, strings.HasSuffix(updated.Slug, "-second-title"))

	// the old slug stops resolving
	_, err = compositionService.GetBySlug(oldSlug)
	assert.ErrorIs(t, err, common.ErrNotFound)

	found, err := compositionService.GetBySlug(updated.Slug)
	assert.NoError(t, err)
	assert.Equal(t, comp.Id, found.Id)
}

func TestUpdateForbiddenForStranger(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	comp := createComposition(t, alice, "A Title")

	compositionService := CompositionService{}
	newTitle := "Hijacked"
	_, err := compositionService.Update(bob, comp.Id, nil, &newTitle, nil)
	assert.ErrorIs(t, err, common.ErrForbidden)

	// unchanged
	found, err := compositionService.Get(comp.Id)
	assert.NoError(t, err)
	assert.Equal(t, "A Title", found.Title)
}

func TestUpdateAllowedForAdmin(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	admin := grantRole(t, registerUser(t, "root"), "Administrator")
	comp := createComposition(t, alice, "A Title")

	compositionService := CompositionService{}
	newTitle := "Corrected Title"
	updated, err := compositionService.Update(admin, comp.Id, nil, &newTitle, nil)
	assert.NoError(t, err)
	assert.Equal(t, "Corrected Title", updated.Title)
	// authorship does not change
	assert.Equal(t, alice.Id, updated.ArtistId)
}

func TestFollowedFeedIncludesOwnWorks(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	carol := registerUser(t, "carol")

	createComposition(t, alice, "Alice Song")
	createComposition(t, bob, "Bob Song")
	createComposition(t, carol, "Carol Song")

	userService := UserService{}
	assert.NoError(t, userService.Follow(alice.Id, bob.Id))

	compositionService := CompositionService{}
	p, err := compositionService.FeedPage(alice.Id, true, 1, 20)
	assert.NoError(t, err)
	// own work via the self-follow edge, bob's via the explicit follow
	assert.Equal(t, int64(2), p.Total)

	views := p.Items.([]*entity.CompositionView)
	titles := []string{views[0].Title, views[1].Title}
	assert.Contains(t, titles, "Alice Song")
	assert.Contains(t, titles, "Bob Song")
}

func TestFullFeedNewestFirst(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	first := createComposition(t, alice, "First")
	second := createComposition(t, alice, "Second")

	compositionService := CompositionService{}
	p, err := compositionService.FeedPage(0, false, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), p.Total)

	views := p.Items.([]*entity.CompositionView)
	assert.Equal(t, second.Slug, views[0].Slug)
	assert.Equal(t, first.Slug, views[1].Slug)
}

func TestPagination(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	for i := 0; i < 45; i++ {
		createComposition(t, alice, fmt.Sprintf("Song %02d", i))
	}

	compositionService := CompositionService{}

	p1, err := compositionService.FeedPage(0, false, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, p1.Items.([]*entity.CompositionView), 20)
	assert.False(t, p1.HasPrev)
	assert.True(t, p1.HasNext)

	p3, err := compositionService.FeedPage(0, false, 3, 20)
	assert.NoError(t, err)
	assert.Len(t, p3.Items.([]*entity.CompositionView), 5)
	assert.True(t, p3.HasPrev)
	assert.False(t, p3.HasNext)

	// out-of-range pages come back empty, not as errors
	p0, err := compositionService.FeedPage(0, false, 0, 20)
	assert.NoError(t, err)
	assert.Len(t, p0.Items.([]*entity.CompositionView), 0)
	assert.Equal(t, int64(45), p0.Total)

	p99, err := compositionService.FeedPage(0, false, 99, 20)
	assert.NoError(t, err)
	assert.Len(t, p99.Items.([]*entity.CompositionView), 0)
	assert.False(t, p99.HasNext)
}

func TestUserCompositionsPage(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	createComposition(t, alice, "Alice Song")
	createComposition(t, bob, "Bob Song")

	compositionService := CompositionService{}
	p, err := compositionService.UserCompositionsPage(alice.Id, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.Total)

	views := p.Items.([]*entity.CompositionView)
	assert.Equal(t, "Alice Song", views[0].Title)
}
