package service

import (
	"strings"
	"time"

	"ragtime/config"
	"ragtime/database"
	"ragtime/database/model"
	"ragtime/logger"
	"ragtime/util/common"
	"ragtime/util/crypto"
	"ragtime/web/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RolePolicy decides which role a fresh registration receives, given the
// registration email. The default policy grants the administrator role to
// the configured admin address and the default role to everyone else.
type RolePolicy func(email string) (*model.Role, error)

// UserService manages accounts, authentication and the follow graph.
type UserService struct {
	roleService         RoleService
	tokenService        TokenService
	notificationService NotificationService

	// RolePolicy overrides role assignment at registration when set.
	RolePolicy RolePolicy
}

func (s *UserService) resolveRole(email string) (*model.Role, error) {
	if s.RolePolicy != nil {
		return s.RolePolicy(email)
	}
	if admin := config.GetAdminEmail(); admin != "" && strings.EqualFold(email, admin) {
		return s.roleService.GetByName("Administrator")
	}
	return s.roleService.GetDefault()
}

// Register creates an account, assigns its role, inserts the self-follow
// edge and fires the welcome and confirmation notifications. Duplicate
// username or email comes back as a field-level validation error.
func (s *UserService) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, common.NewValidationError("username", "username is required")
	}
	if email == "" {
		return nil, common.NewValidationError("email", "email is required")
	}
	if password == "" {
		return nil, common.NewValidationError("password", "password is required")
	}

	role, err := s.resolveRole(email)
	if err != nil {
		return nil, err
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		RoleId:       role.Id,
		Role:         role,
		LastSeen:     time.Now(),
		AvatarHash:   crypto.EmailHash(email),
	}

	db := database.GetDB()
	if err := db.Omit("Role").Create(user).Error; err != nil {
		if common.IsDuplicate(err) {
			return nil, common.NewValidationError("username", "username or email already in use")
		}
		return nil, err
	}
	// The self-follow edge makes the user's own content show up in their
	// followed feed. Created as a second step once the id is known.
	if err := s.Follow(user.Id, user.Id); err != nil {
		return nil, err
	}

	s.notificationService.SendWelcome(user)
	if token, err := s.tokenService.GenerateConfirmationToken(user.Id); err == nil {
		s.notificationService.SendConfirmation(user, token)
	} else {
		logger.Warning("generate confirmation token failed:", err)
	}
	s.notificationService.NotifyAdminNewUser(user)
	return user, nil
}

// CheckUser verifies an email/password pair and returns the account with its
// role loaded, or nil when either is wrong.
func (s *UserService) CheckUser(email, password string) *model.User {
	db := database.GetDB()
	user := &model.User{}
	err := db.Preload("Role").Where("email = ?", email).First(user).Error
	if err != nil {
		if !database.IsNotFound(err) {
			logger.Warning("check user failed:", err)
		}
		return nil
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil
	}
	return user
}

// GetUser returns the user with the given id, role loaded.
func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Preload("Role").First(user, id).Error
	if database.IsNotFound(err) {
		return nil, common.ErrNotFound
	}
	return user, err
}

// GetUserByUsername returns the user with the given unique username.
func (s *UserService) GetUserByUsername(username string) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Preload("Role").Where("username = ?", username).First(user).Error
	if database.IsNotFound(err) {
		return nil, common.ErrNotFound
	}
	return user, err
}

// Ping refreshes the user's last-seen timestamp.
func (s *UserService) Ping(id int) error {
	db := database.GetDB()
	return db.Model(&model.User{}).Where("id = ?", id).
		Update("last_seen", time.Now()).Error
}

// Confirm marks the account confirmed when the token is valid and was issued
// for this user. Returns whether confirmation took effect.
func (s *UserService) Confirm(id int, token string) bool {
	if !s.tokenService.VerifyConfirmationToken(token, id) {
		return false
	}
	db := database.GetDB()
	err := db.Model(&model.User{}).Where("id = ?", id).
		Update("confirmed", true).Error
	if err != nil {
		logger.Warning("confirm user failed:", err)
		return false
	}
	return true
}

// UpdateProfile lets a user edit their own display fields.
func (s *UserService) UpdateProfile(id int, name, location, bio string) error {
	db := database.GetDB()
	return db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]any{
		"name":     name,
		"location": location,
		"bio":      bio,
	}).Error
}

// AdminUpdateUser lets an administrator edit any account, including its
// role and confirmation state.
func (s *UserService) AdminUpdateUser(actor *model.User, id int, username, email string, confirmed bool, roleId int, name, location, bio string) error {
	if !actor.IsAdministrator() {
		return common.ErrForbidden
	}
	if _, err := s.roleService.Get(roleId); err != nil {
		return err
	}
	db := database.GetDB()
	err := db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]any{
		"username":  username,
		"email":     email,
		"confirmed": confirmed,
		"role_id":   roleId,
		"name":      name,
		"location":  location,
		"bio":       bio,
	}).Error
	if common.IsDuplicate(err) {
		return common.NewValidationError("username", "username or email already in use")
	}
	return err
}

// Follow inserts a follow edge. Re-following is a silent no-op; the
// conflict on the composite key is resolved by the store.
func (s *UserService) Follow(followerId, followingId int) error {
	db := database.GetDB()
	edge := &model.Follow{
		FollowerId:  followerId,
		FollowingId: followingId,
		CreatedAt:   time.Now(),
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}

// Unfollow removes a follow edge. Removing an absent edge is a no-op.
func (s *UserService) Unfollow(followerId, followingId int) error {
	db := database.GetDB()
	return db.Delete(&model.Follow{}, "follower_id = ? AND following_id = ?",
		followerId, followingId).Error
}

// IsFollowing reports whether the follower follows the other user. The
// anonymous user (id 0) follows nobody.
func (s *UserService) IsFollowing(followerId, followingId int) bool {
	if followerId == 0 || followingId == 0 {
		return false
	}
	db := database.GetDB()
	var count int64
	err := db.Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerId, followingId).
		Count(&count).Error
	if err != nil {
		logger.Warning("is following failed:", err)
		return false
	}
	return count > 0
}

// FollowersPage lists the users following the given user, most recent first.
func (s *UserService) FollowersPage(userId, page, perPage int) (*entity.Page, error) {
	db := database.GetDB()
	var edges []model.Follow
	query := db.Model(&model.Follow{}).Preload("Follower").
		Where("following_id = ?", userId)
	return s.followPage(query, &edges, page, perPage, func(e *model.Follow) *model.User {
		return e.Follower
	})
}

// FollowingPage lists the users the given user follows, most recent first.
func (s *UserService) FollowingPage(userId, page, perPage int) (*entity.Page, error) {
	db := database.GetDB()
	var edges []model.Follow
	query := db.Model(&model.Follow{}).Preload("Following").
		Where("follower_id = ?", userId)
	return s.followPage(query, &edges, page, perPage, func(e *model.Follow) *model.User {
		return e.Following
	})
}

func (s *UserService) followPage(query *gorm.DB, edges *[]model.Follow, page, perPage int, far func(*model.Follow) *model.User) (*entity.Page, error) {
	p, err := paginate(query, "created_at desc", edges, page, perPage)
	if err != nil {
		return nil, err
	}
	views := make([]*entity.FollowView, 0, len(*edges))
	for i := range *edges {
		edge := &(*edges)[i]
		user := far(edge)
		if user == nil {
			continue
		}
		count, err := s.CompositionCount(user.Id)
		if err != nil {
			return nil, err
		}
		views = append(views, &entity.FollowView{
			User:      entity.NewUserView(user, count),
			Timestamp: edge.CreatedAt,
		})
	}
	p.Items = views
	return p, nil
}

// CompositionCount returns how many compositions the user has published.
func (s *UserService) CompositionCount(userId int) (int64, error) {
	db := database.GetDB()
	var count int64
	err := db.Model(&model.Composition{}).Where("artist_id = ?", userId).
		Count(&count).Error
	return count, err
}

// BackfillSelfFollows inserts the self-follow edge for any account missing
// it. Intended for migrated data; safe to re-run.
func (s *UserService) BackfillSelfFollows() (int, error) {
	db := database.GetDB()
	var ids []int
	err := db.Model(&model.User{}).
		Where("id NOT IN (?)", db.Model(&model.Follow{}).
			Select("follower_id").Where("follower_id = following_id")).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.Follow(id, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
