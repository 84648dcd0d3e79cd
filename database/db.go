// Package database manages the gorm connection, schema migration and the
// canonical role seed for the ragtime platform.
package database

import (
	"io/fs"
	"log"
	"os"
	"path"

	"ragtime/config"
	"ragtime/database/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// defaultRoleName marks the role assigned to fresh registrations.
const defaultRoleName = "User"

// canonicalRoles defines the three seeded roles and their permission sets.
var canonicalRoles = map[string][]model.Permission{
	"User": {
		model.PermissionFollow, model.PermissionReview, model.PermissionPublish,
	},
	"Moderator": {
		model.PermissionFollow, model.PermissionReview, model.PermissionPublish,
		model.PermissionModerate,
	},
	"Administrator": {
		model.PermissionFollow, model.PermissionReview, model.PermissionPublish,
		model.PermissionModerate, model.PermissionAdmin,
	},
}

func initModels() error {
	models := []any{
		&model.Role{},
		&model.User{},
		&model.Follow{},
		&model.Composition{},
		&model.Comment{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// SeedRoles inserts or refreshes the canonical roles. Re-running resets and
// re-derives permissions for existing roles by name instead of duplicating
// rows, so the seed is idempotent.
func SeedRoles() error {
	for name, perms := range canonicalRoles {
		role := &model.Role{}
		err := db.Where("name = ?", name).First(role).Error
		if err == gorm.ErrRecordNotFound {
			role = &model.Role{Name: name}
		} else if err != nil {
			return err
		}
		role.ResetPermissions()
		for _, perm := range perms {
			role.AddPermission(perm)
		}
		role.IsDefault = role.Name == defaultRoleName
		if err := db.Save(role).Error; err != nil {
			return err
		}
	}
	return nil
}

// InitDB opens a sqlite database at dbPath, migrates the schema and seeds
// the canonical roles.
func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return err
	}
	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	return open(sqlite.Open(dsn), true)
}

// InitFromConfig opens the database described by the environment, either
// sqlite or postgres.
func InitFromConfig() error {
	cfg := config.GetDatabaseConfig()
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if cfg.IsPostgreSQL() {
		return open(postgres.Open(cfg.GetDSN()), false)
	}
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return err
	}
	return InitDB(cfg.SQLite.Path)
}

func open(dialector gorm.Dialector, isSQLite bool) error {
	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	}

	var err error
	db, err = gorm.Open(dialector, c)
	if err != nil {
		return err
	}

	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		for _, pragma := range []string{
			"PRAGMA cache_size = -64000;",
			"PRAGMA temp_store = MEMORY;",
			"PRAGMA foreign_keys = ON;",
		} {
			if _, err = sqlDB.Exec(pragma); err != nil {
				return err
			}
		}
	}

	if err := initModels(); err != nil {
		return err
	}
	return SeedRoles()
}

// CloseDB checkpoints and closes the database.
func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

// Checkpoint flushes the sqlite WAL. A no-op error on postgres is ignored by
// the caller.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
