package service

import (
	"strings"

	"ragtime/database"
	"ragtime/database/model"
	"ragtime/util/common"
	"ragtime/web/entity"

	"gorm.io/gorm"
)

// CommentService manages composition comment threads and their moderation.
type CommentService struct {
	compositionService CompositionService
}

// Create posts a comment on a composition.
func (s *CommentService) Create(actor *model.User, compositionId int, body string) (*model.Comment, error) {
	if !actor.Can(model.PermissionComment) {
		return nil, common.ErrForbidden
	}
	if strings.TrimSpace(body) == "" {
		return nil, common.NewValidationError("body", "body is required")
	}
	if _, err := s.compositionService.Get(compositionId); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ArtistId:      actor.Id,
		CompositionId: compositionId,
	}
	comment.SetBody(body)

	db := database.GetDB()
	if err := db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Get returns the comment with the given id.
func (s *CommentService) Get(id int) (*model.Comment, error) {
	db := database.GetDB()
	comment := &model.Comment{}
	err := db.First(comment, id).Error
	if database.IsNotFound(err) {
		return nil, common.ErrNotFound
	}
	return comment, err
}

// ThreadPage returns one page of a composition's visible comments, oldest
// first. Disabled comments are filtered out. page -1 resolves to the last
// page of the thread.
func (s *CommentService) ThreadPage(compositionId, page, perPage int) (*entity.Page, error) {
	db := database.GetDB()
	query := db.Model(&model.Comment{}).
		Where("composition_id = ? AND disabled = ?", compositionId, false)
	if page == -1 {
		var total int64
		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return nil, err
		}
		page = lastPage(total, perPage)
	}
	return s.commentPage(query, "created_at asc", page, perPage)
}

// AllPage returns one page of every comment in the system, newest first and
// disabled ones included. Used by moderation and the API.
func (s *CommentService) AllPage(page, perPage int) (*entity.Page, error) {
	db := database.GetDB()
	query := db.Model(&model.Comment{})
	return s.commentPage(query, "created_at desc", page, perPage)
}

// CompositionAllPage returns one page of a composition's comments for the
// API, oldest first and disabled ones included.
func (s *CommentService) CompositionAllPage(compositionId, page, perPage int) (*entity.Page, error) {
	db := database.GetDB()
	query := db.Model(&model.Comment{}).
		Where("composition_id = ?", compositionId)
	return s.commentPage(query, "created_at asc", page, perPage)
}

func (s *CommentService) commentPage(query *gorm.DB, order string, page, perPage int) (*entity.Page, error) {
	var comments []model.Comment
	p, err := paginate(query, order, &comments, page, perPage)
	if err != nil {
		return nil, err
	}
	views := make([]*entity.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, entity.NewCommentView(&comments[i]))
	}
	p.Items = views
	return p, nil
}

// SetDisabled flips a comment's moderation flag. Requires the moderate
// permission.
func (s *CommentService) SetDisabled(actor *model.User, id int, disabled bool) error {
	if !actor.Can(model.PermissionModerate) {
		return common.ErrForbidden
	}
	db := database.GetDB()
	result := db.Model(&model.Comment{}).Where("id = ?", id).
		Update("disabled", disabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
