package services

import (
	"context"
	"testing"
	"time"

	"awp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccommodationManagerLinks(t *testing.T) {
	db := newTestDB(t)
	first := createAccommodation(t, db, "A7")
	second := createAccommodation(t, db, "A42")

	userSvc := NewUserService(db)
	manager, err := userSvc.Create("manager1", "manager1@example.com", "secret123", "Wei", "Chen", models.UserRoleManager, nil)
	require.NoError(t, err)

	svc := NewAccommodationService(db)

	// 一个管理员可以同时管理多个公寓
	require.NoError(t, svc.AddManager(first.ID, manager.ID))
	require.NoError(t, svc.AddManager(second.ID, manager.ID))

	// 重复关联被拒绝
	assert.Error(t, svc.AddManager(first.ID, manager.ID))

	managed, err := svc.GetManagedAccommodations(manager.ID)
	require.NoError(t, err)
	assert.Len(t, managed, 2)

	assert.True(t, svc.ManagesAccommodation(manager.ID, first.ID))

	require.NoError(t, svc.RemoveManager(first.ID, manager.ID))
	assert.False(t, svc.ManagesAccommodation(manager.ID, first.ID))
	assert.True(t, svc.ManagesAccommodation(manager.ID, second.ID))
}

func TestAccommodationAddManagerRejectsStudent(t *testing.T) {
	db := newTestDB(t)
	accommodation := createAccommodation(t, db, "A7")

	userSvc := NewUserService(db)
	student, err := userSvc.Create("student1", "student1@example.com", "secret123", "Wei", "Chen", models.UserRoleStudent, nil)
	require.NoError(t, err)

	svc := NewAccommodationService(db)
	assert.Error(t, svc.AddManager(accommodation.ID, student.ID))
}

func TestAccommodationDeleteRefusesWhenReferenced(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	_, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	svc := NewAccommodationService(db)
	assert.Error(t, svc.Delete(accommodation.ID))

	// 没有引用的公寓可以删除
	empty := createAccommodation(t, db, "A8")
	assert.NoError(t, svc.Delete(empty.ID))
}

func TestAccommodationStudentRoster(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	redeemSvc := NewRedemptionService(db)
	for _, name := range []string{"alice", "bob"} {
		code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
		require.NoError(t, err)
		_, err = redeemSvc.Redeem(context.Background(), code.Token, validProfile(name, name+"@example.com"))
		require.NoError(t, err)
	}

	svc := NewAccommodationService(db)
	profiles, total, err := svc.GetStudentsWithPage(accommodation.ID, models.StudentStatusActive, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, profiles, 2)
	assert.NotZero(t, profiles[0].User.ID)
}

func TestAccommodationUpdate(t *testing.T) {
	db := newTestDB(t)
	accommodation := createAccommodation(t, db, "A7")

	svc := NewAccommodationService(db)
	siteID := "site-001"
	updated, err := svc.Update(accommodation.ID, "A7改", "新地址1号", "上海", &siteID, models.AccommodationStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, "A7改", updated.Name)
	require.NotNil(t, updated.ControllerSiteID)
	assert.Equal(t, "site-001", *updated.ControllerSiteID)

	_, err = svc.Update(accommodation.ID, "", "", "", nil, models.AccommodationStatusActive)
	assert.Error(t, err)

	_, err = svc.Update(accommodation.ID, "A7", "", "", nil, "archived")
	assert.Error(t, err)
}
