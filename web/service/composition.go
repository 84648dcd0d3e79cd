package service

import (
	"strings"

	"ragtime/config"
	"ragtime/database"
	"ragtime/database/model"
	"ragtime/util/common"
	"ragtime/web/entity"

	"gorm.io/gorm"
)

// CompositionService manages published works and the feeds built from them.
type CompositionService struct{}

// profileBase is the URL prefix @mentions are rewritten against.
func profileBase() string {
	return config.GetExternalURL() + "/user"
}

// Create publishes a new composition for the actor. All three fields are
// required; the slug is derived from the assigned id and title in a second
// write once the insert has produced the id.
func (s *CompositionService) Create(actor *model.User, releaseType *model.ReleaseType, title, description *string) (*model.Composition, error) {
	if !actor.Can(model.PermissionPublish) {
		return nil, common.ErrForbidden
	}
	if releaseType == nil || !releaseType.Valid() {
		return nil, common.NewValidationError("releaseType", "releaseType must be 0, 1 or 2")
	}
	if title == nil || strings.TrimSpace(*title) == "" {
		return nil, common.NewValidationError("title", "title is required")
	}
	if description == nil || strings.TrimSpace(*description) == "" {
		return nil, common.NewValidationError("description", "description is required")
	}

	comp := &model.Composition{
		ReleaseType: *releaseType,
		Title:       *title,
		ArtistId:    actor.Id,
	}
	comp.SetDescription(*description, profileBase())

	db := database.GetDB()
	if err := db.Create(comp).Error; err != nil {
		return nil, err
	}
	comp.GenerateSlug()
	if err := db.Save(comp).Error; err != nil {
		return nil, err
	}
	return comp, nil
}

// Update edits a composition. Only the artist or an administrator may edit;
// absent fields keep their current value. The slug is regenerated whenever
// the update goes through, so a title change retires the old slug.
func (s *CompositionService) Update(actor *model.User, id int, releaseType *model.ReleaseType, title, description *string) (*model.Composition, error) {
	comp, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if comp.ArtistId != actor.Id && !actor.IsAdministrator() {
		return nil, common.ErrForbidden
	}
	if releaseType != nil {
		if !releaseType.Valid() {
			return nil, common.NewValidationError("releaseType", "releaseType must be 0, 1 or 2")
		}
		comp.ReleaseType = *releaseType
	}
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, common.NewValidationError("title", "title is required")
		}
		comp.Title = *title
	}
	if description != nil {
		comp.SetDescription(*description, profileBase())
	}
	comp.GenerateSlug()

	db := database.GetDB()
	if err := db.Save(comp).Error; err != nil {
		return nil, err
	}
	return comp, nil
}

// Get returns the composition with the given id.
func (s *CompositionService) Get(id int) (*model.Composition, error) {
	db := database.GetDB()
	comp := &model.Composition{}
	err := db.Preload("Artist").First(comp, id).Error
	if database.IsNotFound(err) {
		return nil, common.ErrNotFound
	}
	return comp, err
}

// GetBySlug resolves a composition by its current slug. Slugs from before
// the last title change no longer resolve.
func (s *CompositionService) GetBySlug(slug string) (*model.Composition, error) {
	db := database.GetDB()
	comp := &model.Composition{}
	err := db.Preload("Artist").Where("slug = ?", slug).First(comp).Error
	if database.IsNotFound(err) {
		return nil, common.ErrNotFound
	}
	return comp, err
}

// FeedPage returns one page of the newest-first feed. With followedOnly set
// the feed is restricted to artists the user follows, which includes the
// user's own works through the self-follow edge.
func (s *CompositionService) FeedPage(userId int, followedOnly bool, page, perPage int) (*entity.Page, error) {
	db := database.GetDB()
	query := db.Model(&model.Composition{}).Preload("Artist")
	if followedOnly {
		query = query.
			Joins("JOIN follows ON follows.following_id = compositions.artist_id").
			Where("follows.follower_id = ?", userId)
	}
	return s.compositionPage(query, page, perPage)
}

// UserCompositionsPage returns one page of a single artist's works,
// newest first.
func (s *CompositionService) UserCompositionsPage(artistId, page, perPage int) (*entity.Page, error) {
	db := database.GetDB()
	query := db.Model(&model.Composition{}).Preload("Artist").
		Where("artist_id = ?", artistId)
	return s.compositionPage(query, page, perPage)
}

func (s *CompositionService) compositionPage(query *gorm.DB, page, perPage int) (*entity.Page, error) {
	var comps []model.Composition
	p, err := paginate(query, "compositions.created_at desc", &comps, page, perPage)
	if err != nil {
		return nil, err
	}
	db := database.GetDB()
	views := make([]*entity.CompositionView, 0, len(comps))
	for i := range comps {
		var count int64
		err := db.Model(&model.Comment{}).
			Where("composition_id = ?", comps[i].Id).Count(&count).Error
		if err != nil {
			return nil, err
		}
		views = append(views, entity.NewCompositionView(&comps[i], count))
	}
	p.Items = views
	return p, nil
}

// CommentCount returns how many comments a composition has, disabled ones
// included.
func (s *CompositionService) CommentCount(id int) (int64, error) {
	db := database.GetDB()
	var count int64
	err := db.Model(&model.Comment{}).Where("composition_id = ?", id).
		Count(&count).Error
	return count, err
}
