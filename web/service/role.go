package service

import (
	"time"

	"ragtime/database"
	"ragtime/database/model"
	"ragtime/util/common"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// roleCache avoids a role lookup on every permission check. Roles only
// change through seeding, which flushes the cache.
var roleCache = gocache.New(10*time.Minute, 10*time.Minute)

// RoleService manages the canonical roles and their permission masks.
type RoleService struct{}

// SeedRoles inserts or refreshes the three canonical roles. Safe to re-run.
func (s *RoleService) SeedRoles() error {
	roleCache.Flush()
	return database.SeedRoles()
}

// GetAll returns every role ordered by name.
func (s *RoleService) GetAll() ([]model.Role, error) {
	db := database.GetDB()
	var roles []model.Role
	err := db.Model(&model.Role{}).Order("name").Find(&roles).Error
	return roles, err
}

// Get returns the role with the given id.
func (s *RoleService) Get(id int) (*model.Role, error) {
	db := database.GetDB()
	role := &model.Role{}
	err := db.First(role, id).Error
	if database.IsNotFound(err) {
		return nil, common.ErrNotFound
	}
	return role, err
}

// GetByName returns the role with the given unique name.
func (s *RoleService) GetByName(name string) (*model.Role, error) {
	if cached, ok := roleCache.Get("name:" + name); ok {
		role := cached.(model.Role)
		return &role, nil
	}
	db := database.GetDB()
	role := &model.Role{}
	err := db.Where("name = ?", name).First(role).Error
	if err == gorm.ErrRecordNotFound {
		return nil, common.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	roleCache.SetDefault("name:"+name, *role)
	return role, nil
}

// GetDefault returns the role assigned to fresh registrations.
func (s *RoleService) GetDefault() (*model.Role, error) {
	if cached, ok := roleCache.Get("default"); ok {
		role := cached.(model.Role)
		return &role, nil
	}
	db := database.GetDB()
	role := &model.Role{}
	err := db.Where("is_default = ?", true).First(role).Error
	if err == gorm.ErrRecordNotFound {
		return nil, common.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	roleCache.SetDefault("default", *role)
	return role, nil
}
