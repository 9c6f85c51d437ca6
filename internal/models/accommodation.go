package models

import (
	"time"
)

// Accommodation 学生公寓
type Accommodation struct {
	BaseModel
	Name             string  `json:"name" gorm:"not null;size:100;index"`
	Address          string  `json:"address" gorm:"size:255"`
	City             string  `json:"city" gorm:"size:100"`
	ControllerSiteID *string `json:"controller_site_id" gorm:"size:100"` // 无线控制器侧的站点ID
	Status           string  `json:"status" gorm:"default:'active';size:20"`

	// 关联
	Managers []User `gorm:"many2many:manager_accommodations;" json:"managers,omitempty"`
}

// TableName 表名
func (Accommodation) TableName() string {
	return "accommodations"
}

// 公寓状态常量
const (
	AccommodationStatusActive   = "active"
	AccommodationStatusInactive = "inactive"
)

// ManagerAccommodation 管理员-公寓关联
// 一个管理员可管理多个公寓，一个公寓可有多个管理员
type ManagerAccommodation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index;uniqueIndex:idx_manager_accommodation" json:"user_id"`
	AccommodationID uint      `gorm:"not null;index;uniqueIndex:idx_manager_accommodation" json:"accommodation_id"`
	CreatedAt       time.Time `json:"created_at"`

	// 关联
	User          User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Accommodation Accommodation `gorm:"foreignKey:AccommodationID" json:"accommodation,omitempty"`
}

// TableName 表名
func (ManagerAccommodation) TableName() string {
	return "manager_accommodations"
}

// StudentProfile 学生入住档案
// 一个学生账号只对应一个公寓
type StudentProfile struct {
	BaseModel
	UserID          uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	AccommodationID uint       `gorm:"not null;index" json:"accommodation_id"`
	Status          string     `gorm:"not null;default:'active';size:20" json:"status"` // pending/active/inactive/archived
	Room            *string    `gorm:"size:50" json:"room"`
	MoveInAt        *time.Time `json:"move_in_at"`

	// 关联
	User          User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Accommodation Accommodation `gorm:"foreignKey:AccommodationID" json:"accommodation,omitempty"`
}

// TableName 表名
func (StudentProfile) TableName() string {
	return "student_profiles"
}

// 学生档案状态常量
const (
	StudentStatusPending  = "pending"
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
	StudentStatusArchived = "archived"
)
