package services

import (
	"testing"

	"awp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateAndDuplicates(t *testing.T) {
	db := newTestDB(t)

	svc := NewUserService(db)
	user, err := svc.Create("manager1", "manager1@example.com", "secret123", "Wei", "Chen", models.UserRoleManager, nil)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)

	_, err = svc.Create("manager1", "other@example.com", "secret123", "Wei", "Chen", models.UserRoleManager, nil)
	assert.ErrorIs(t, err, ErrLoginTaken)

	_, err = svc.Create("manager2", "manager1@example.com", "secret123", "Wei", "Chen", models.UserRoleManager, nil)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserCreateRejectsBadParams(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Create("ab", "a@b.com", "secret123", "Wei", "Chen", models.UserRoleManager, nil)
	assert.Error(t, err)

	_, err = svc.Create("manager1", "not-an-email", "secret123", "Wei", "Chen", models.UserRoleManager, nil)
	assert.Error(t, err)

	_, err = svc.Create("manager1", "a@b.com", "123", "Wei", "Chen", models.UserRoleManager, nil)
	assert.Error(t, err)

	_, err = svc.Create("manager1", "a@b.com", "secret123", "Wei", "Chen", "tenant", nil)
	assert.Error(t, err)
}

func TestUserStatusShortcuts(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)

	svc := NewUserService(db)

	user, err := svc.Deactivate(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusInactive, user.Status)
	assert.False(t, svc.IsActive(user))

	user, err = svc.Activate(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)

	user, err = svc.Archive(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusArchived, user.Status)
}

func TestUserResetPassword(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)

	svc := NewUserService(db)
	user, err := svc.ResetPassword(owner.ID, "newsecret")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("newsecret"))
	assert.False(t, user.CheckPassword("secret123"))

	_, err = svc.ResetPassword(owner.ID, "123")
	assert.Error(t, err)
}

func TestUserFilters(t *testing.T) {
	db := newTestDB(t)
	createOwner(t, db)

	svc := NewUserService(db)
	_, err := svc.Create("manager1", "manager1@example.com", "secret123", "Wei", "Chen", models.UserRoleManager, nil)
	require.NoError(t, err)

	users, total, err := svc.GetWithFiltersAndPage(models.UserRoleManager, "", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "manager1", users[0].Username)

	_, total, err = svc.GetWithFiltersAndPage("", "", "chen", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
