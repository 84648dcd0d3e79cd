package service

import (
	"os"
	"testing"

	"ragtime/database"
	"ragtime/database/model"
)

func setup() {
	dbPath := "test.db"
	os.Remove(dbPath)
	roleCache.Flush()
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

// registerUser creates a throwaway account for tests.
func registerUser(t *testing.T, username string) *model.User {
	t.Helper()
	userService := UserService{}
	user, err := userService.Register(username, username+"@example.com", "secret")
	if err != nil {
		t.Fatal("register failed:", err)
	}
	return user
}

// grantRole moves the user to the named canonical role and reloads it.
func grantRole(t *testing.T, user *model.User, roleName string) *model.User {
	t.Helper()
	roleService := RoleService{}
	role, err := roleService.GetByName(roleName)
	if err != nil {
		t.Fatal("role lookup failed:", err)
	}
	db := database.GetDB()
	if err := db.Model(&model.User{}).Where("id = ?", user.Id).
		Update("role_id", role.Id).Error; err != nil {
		t.Fatal("role update failed:", err)
	}
	userService := UserService{}
	reloaded, err := userService.GetUser(user.Id)
	if err != nil {
		t.Fatal("reload failed:", err)
	}
	return reloaded
}
