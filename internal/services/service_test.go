package services

import (
	"fmt"
	"strings"
	"testing"

	"awp/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 创建测试数据库
// 单连接串行化写入，贴近Postgres行锁下同一令牌的兑换顺序
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Accommodation{},
		&models.ManagerAccommodation{},
		&models.StudentProfile{},
		&models.InviteCode{},
		&models.AuditLog{},
	))

	return db
}

// createOwner 创建业主账号（邀请码签发人）
func createOwner(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	owner := &models.User{
		Username:  "owner",
		Email:     "owner@example.com",
		FirstName: "Test",
		LastName:  "Owner",
		Role:      models.UserRoleOwner,
		Status:    models.UserStatusActive,
	}
	require.NoError(t, owner.SetPassword("secret123"))
	require.NoError(t, db.Create(owner).Error)
	return owner
}

// createAccommodation 创建公寓
func createAccommodation(t *testing.T, db *gorm.DB, name string) *models.Accommodation {
	t.Helper()

	accommodation := &models.Accommodation{
		Name:   name,
		City:   "Test City",
		Status: models.AccommodationStatusActive,
	}
	require.NoError(t, db.Create(accommodation).Error)
	return accommodation
}

// validProfile 合法的入驻资料
func validProfile(username, email string) *ProfileInput {
	return &ProfileInput{
		FirstName:       "Wei",
		LastName:        "Chen",
		Email:           email,
		Username:        username,
		Password:        "secret123",
		PasswordConfirm: "secret123",
	}
}
