package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"awp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedeemManagerScenario(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A42")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleManager, accommodation.ID, 7*24*time.Hour)
	require.NoError(t, err)

	svc := NewRedemptionService(db)
	user, err := svc.Redeem(context.Background(), code.Token, validProfile("manager1", "manager1@example.com"))
	require.NoError(t, err)

	assert.Equal(t, models.UserRoleManager, user.Role)

	// 管理员-公寓关联指向码指定的公寓
	var link models.ManagerAccommodation
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&link).Error)
	assert.Equal(t, accommodation.ID, link.AccommodationID)

	// 码转为used，消费人与时间落库
	used, err := codeSvc.GetByID(code.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteCodeStatusUsed, used.Status)
	require.NotNil(t, used.UsedByID)
	assert.Equal(t, user.ID, *used.UsedByID)
	assert.NotNil(t, used.UsedAt)
}

func TestRedeemStudentScenario(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	svc := NewRedemptionService(db)
	user, err := svc.Redeem(context.Background(), code.Token, validProfile("student1", "student1@example.com"))
	require.NoError(t, err)

	assert.Equal(t, models.UserRoleStudent, user.Role)

	var profile models.StudentProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, accommodation.ID, profile.AccommodationID)
	assert.Equal(t, models.StudentStatusActive, profile.Status)
}

func TestRedeemEmailTakenLeavesCodeUnused(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	svc := NewRedemptionService(db)
	// 业主已占用该邮箱
	_, err = svc.Redeem(context.Background(), code.Token, validProfile("student1", owner.Email))
	assert.ErrorIs(t, err, ErrEmailTaken)

	// 失败的尝试不作废邀请码
	fresh, err := codeSvc.GetByID(code.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteCodeStatusUnused, fresh.Status)

	// 没有创建任何账号
	var count int64
	db.Model(&models.User{}).Where("username = ?", "student1").Count(&count)
	assert.Equal(t, int64(0), count)

	// 同一个码随后仍可正常兑换
	_, err = svc.Redeem(context.Background(), code.Token, validProfile("student1", "student1@example.com"))
	assert.NoError(t, err)
}

func TestRedeemLoginTaken(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	svc := NewRedemptionService(db)
	_, err = svc.Redeem(context.Background(), code.Token, validProfile(owner.Username, "new@example.com"))
	assert.ErrorIs(t, err, ErrLoginTaken)
}

func TestRedeemExpiredByTime(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	// 状态仍为unused，但过期时刻已过
	require.NoError(t, db.Model(&models.InviteCode{}).Where("id = ?", code.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	svc := NewRedemptionService(db)
	_, err = svc.Redeem(context.Background(), code.Token, validProfile("student1", "student1@example.com"))
	assert.ErrorIs(t, err, ErrCodeExpired)

	var count int64
	db.Model(&models.User{}).Where("username = ?", "student1").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRedeemRevokedCode(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, codeSvc.Revoke(code.ID))

	svc := NewRedemptionService(db)
	_, err = svc.Redeem(context.Background(), code.Token, validProfile("student1", "student1@example.com"))
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestRedeemUnknownToken(t *testing.T) {
	db := newTestDB(t)

	svc := NewRedemptionService(db)
	_, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC-DDDD", validProfile("student1", "student1@example.com"))
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestRedeemTwiceSequential(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	svc := NewRedemptionService(db)
	_, err = svc.Redeem(context.Background(), code.Token, validProfile("student1", "student1@example.com"))
	require.NoError(t, err)

	// 重复兑换稳定失败，不会产生第二个账号
	_, err = svc.Redeem(context.Background(), code.Token, validProfile("student2", "student2@example.com"))
	assert.ErrorIs(t, err, ErrCodeAlreadyUsed)

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleStudent).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRedeemConcurrentExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	svc := NewRedemptionService(db)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			profile := validProfile(
				fmt.Sprintf("student%d", i),
				fmt.Sprintf("student%d@example.com", i),
			)
			_, errs[i] = svc.Redeem(context.Background(), code.Token, profile)
		}(i)
	}
	wg.Wait()

	// 恰好一个成功，其余全部报码已使用
	var succeeded, alreadyUsed int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case err == ErrCodeAlreadyUsed:
			alreadyUsed++
		default:
			t.Fatalf("意外错误: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, alreadyUsed)

	// 落库恰好一个学生账号和一个学生档案
	var userCount, profileCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleStudent).Count(&userCount)
	db.Model(&models.StudentProfile{}).Count(&profileCount)
	assert.Equal(t, int64(1), userCount)
	assert.Equal(t, int64(1), profileCount)
}

func TestRedeemRollsBackOnRoleRowFailure(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	// 模拟角色记录插入阶段的存储故障
	require.NoError(t, db.Migrator().DropTable(&models.StudentProfile{}))

	svc := NewRedemptionService(db)
	_, err = svc.Redeem(context.Background(), code.Token, validProfile("student1", "student1@example.com"))
	require.Error(t, err)

	// 账号插入与码状态写入一并回滚
	var count int64
	db.Model(&models.User{}).Where("username = ?", "student1").Count(&count)
	assert.Equal(t, int64(0), count)

	fresh, err := codeSvc.GetByID(code.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteCodeStatusUnused, fresh.Status)
	assert.Nil(t, fresh.UsedByID)
}

func TestRedeemCanceledContext(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewRedemptionService(db)
	_, err = svc.Redeem(ctx, code.Token, validProfile("student1", "student1@example.com"))
	require.Error(t, err)

	// 取消只回滚，不污染码状态
	fresh, err := codeSvc.GetByID(code.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteCodeStatusUnused, fresh.Status)
}

func TestRedeemValidationFailedNoWrites(t *testing.T) {
	db := newTestDB(t)
	owner := createOwner(t, db)
	accommodation := createAccommodation(t, db, "A7")

	codeSvc := NewCodeService(db)
	code, err := codeSvc.Generate(owner.ID, models.InviteCodeRoleStudent, accommodation.ID, time.Hour)
	require.NoError(t, err)

	input := validProfile("student1", "not-an-email")
	input.PasswordConfirm = "different"

	svc := NewRedemptionService(db)
	_, err = svc.Redeem(context.Background(), code.Token, input)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "password_confirm")

	var count int64
	db.Model(&models.User{}).Where("username = ?", "student1").Count(&count)
	assert.Equal(t, int64(0), count)

	fresh, err := codeSvc.GetByID(code.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InviteCodeStatusUnused, fresh.Status)
}
