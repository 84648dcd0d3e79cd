package service

import (
	"testing"

	"ragtime/database/model"
	"ragtime/util/common"
	"ragtime/web/entity"

	"github.com/stretchr/testify/assert"
)

func TestRegisterCreatesSelfFollow(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	user := registerUser(t, "alice")

	assert.True(t, userService.IsFollowing(user.Id, user.Id))
	assert.Equal(t, "User", user.Role.Name)
	assert.False(t, user.Confirmed)
	assert.NotEmpty(t, user.AvatarHash)
}

func TestRegisterDuplicate(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	registerUser(t, "alice")

	_, err := userService.Register("alice", "other@example.com", "secret")
	assert.Error(t, err)
	assert.True(t, common.IsValidation(err))
}

func TestRegisterValidation(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	_, err := userService.Register("", "a@example.com", "secret")
	assert.True(t, common.IsValidation(err))
	_, err = userService.Register("alice", "", "secret")
	assert.True(t, common.IsValidation(err))
	_, err = userService.Register("alice", "a@example.com", "")
	assert.True(t, common.IsValidation(err))
}

func TestRolePolicyAdminEmail(t *testing.T) {
	setup()
	defer teardown()

	t.Setenv("RAGTIME_ADMIN", "boss@example.com")

	userService := UserService{}
	admin, err := userService.Register("boss", "boss@example.com", "secret")
	assert.NoError(t, err)
	assert.True(t, admin.IsAdministrator())

	regular := registerUser(t, "alice")
	assert.False(t, regular.IsAdministrator())
}

func TestCheckUser(t *testing.T) {
	setup()
	defer teardown()

	registerUser(t, "alice")
	userService := UserService{}

	user := userService.CheckUser("alice@example.com", "secret")
	assert.NotNil(t, user)
	assert.NotNil(t, user.Role)

	assert.Nil(t, userService.CheckUser("alice@example.com", "wrong"))
	assert.Nil(t, userService.CheckUser("nobody@example.com", "secret"))
}

func TestFollowIdempotent(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	userService := UserService{}

	assert.False(t, userService.IsFollowing(alice.Id, bob.Id))

	assert.NoError(t, userService.Follow(alice.Id, bob.Id))
	assert.True(t, userService.IsFollowing(alice.Id, bob.Id))
	// the edge is directed
	assert.False(t, userService.IsFollowing(bob.Id, alice.Id))

	// re-following is a silent no-op
	assert.NoError(t, userService.Follow(alice.Id, bob.Id))

	p, err := userService.FollowersPage(bob.Id, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), p.Total) // bob's self-follow plus alice
}

func TestUnfollowIdempotent(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	userService := UserService{}

	assert.NoError(t, userService.Follow(alice.Id, bob.Id))
	assert.NoError(t, userService.Unfollow(alice.Id, bob.Id))
	assert.False(t, userService.IsFollowing(alice.Id, bob.Id))

	// removing an absent edge is a no-op
	assert.NoError(t, userService.Unfollow(alice.Id, bob.Id))
}

func TestAnonymousFollowsNobody(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	userService := UserService{}
	assert.False(t, userService.IsFollowing(0, alice.Id))
}

func TestFollowingPage(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	carol := registerUser(t, "carol")
	userService := UserService{}

	assert.NoError(t, userService.Follow(alice.Id, bob.Id))
	assert.NoError(t, userService.Follow(alice.Id, carol.Id))

	p, err := userService.FollowingPage(alice.Id, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), p.Total) // self plus two others

	views, ok := p.Items.([]*entity.FollowView)
	assert.True(t, ok)
	assert.Len(t, views, 3)
	for _, v := range views {
		assert.NotNil(t, v.User)
		assert.NotEmpty(t, v.User.Username)
	}
}

func TestConfirm(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	userService := UserService{}
	tokenService := TokenService{}

	token, err := tokenService.GenerateConfirmationToken(alice.Id)
	assert.NoError(t, err)

	assert.True(t, userService.Confirm(alice.Id, token))

	reloaded, err := userService.GetUser(alice.Id)
	assert.NoError(t, err)
	assert.True(t, reloaded.Confirmed)
}

func TestConfirmWrongUser(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	userService := UserService{}
	tokenService := TokenService{}

	token, err := tokenService.GenerateConfirmationToken(alice.Id)
	assert.NoError(t, err)

	// a token issued for alice never confirms bob
	assert.False(t, userService.Confirm(bob.Id, token))
	assert.False(t, userService.Confirm(alice.Id, "garbage"))
}

func TestAdminUpdateUser(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	bob := registerUser(t, "bob")
	admin := grantRole(t, registerUser(t, "root"), "Administrator")

	userService := UserService{}
	roleService := RoleService{}
	modRole, err := roleService.GetByName("Moderator")
	assert.NoError(t, err)

	err = userService.AdminUpdateUser(admin, bob.Id,
		"bob", "bob@example.com", true, modRole.Id, "Bob", "", "")
	assert.NoError(t, err)

	reloaded, err := userService.GetUser(bob.Id)
	assert.NoError(t, err)
	assert.True(t, reloaded.Confirmed)
	assert.True(t, reloaded.Can(model.PermissionModerate))

	// a regular user may not
	err = userService.AdminUpdateUser(alice, bob.Id,
		"bob", "bob@example.com", true, modRole.Id, "Bob", "", "")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestBackfillSelfFollows(t *testing.T) {
	setup()
	defer teardown()

	alice := registerUser(t, "alice")
	userService := UserService{}

	// simulate migrated data missing the self edge
	assert.NoError(t, userService.Unfollow(alice.Id, alice.Id))

	n, err := userService.BackfillSelfFollows()
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, userService.IsFollowing(alice.Id, alice.Id))

	// safe to re-run
	n, err = userService.BackfillSelfFollows()
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGetUserNotFound(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	_, err := userService.GetUser(999)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = userService.GetUserByUsername("ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
