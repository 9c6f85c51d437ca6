package main

import (
	"awp/internal/database"
	"awp/internal/models"
	"awp/pkg/logger"
	"fmt"
	"os"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建默认业主账号
	if err := createDefaultOwner(db); err != nil {
		return fmt.Errorf("创建默认业主账号失败: %v", err)
	}

	// 2. 创建示例公寓
	if err := createDefaultAccommodation(db); err != nil {
		return fmt.Errorf("创建示例公寓失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultOwner 创建默认业主账号
func createDefaultOwner(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleOwner).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("业主账号已存在，跳过创建")
		return nil
	}

	password := os.Getenv("SEED_OWNER_PASSWORD")
	if password == "" {
		password = "changeme"
		logger.GetLogger().Warn("未设置SEED_OWNER_PASSWORD，使用默认密码，请尽快修改")
	}

	owner := &models.User{
		Username:  "owner",
		Email:     "owner@example.com",
		FirstName: "Default",
		LastName:  "Owner",
		Role:      models.UserRoleOwner,
		Status:    models.UserStatusActive,
	}
	if err := owner.SetPassword(password); err != nil {
		return err
	}

	if err := db.Create(owner).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认业主账号创建成功: owner")
	return nil
}

// createDefaultAccommodation 创建示例公寓
func createDefaultAccommodation(db *gorm.DB) error {
	var count int64
	db.Model(&models.Accommodation{}).Count(&count)
	if count > 0 {
		return nil
	}

	accommodation := &models.Accommodation{
		Name:   "示例公寓",
		City:   "示例城市",
		Status: models.AccommodationStatusActive,
	}

	if err := db.Create(accommodation).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("示例公寓创建成功")
	return nil
}
