package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 账号模型
type User struct {
	BaseModel
	Username       string     `json:"username" gorm:"unique;not null;size:50;index"`
	Email          string     `json:"email" gorm:"unique;not null;size:100;index"`
	PasswordHash   string     `json:"-" gorm:"not null;size:255"`
	FirstName      string     `json:"first_name" gorm:"not null;size:50"`
	LastName       string     `json:"last_name" gorm:"not null;size:50"`
	Role           string     `json:"role" gorm:"not null;size:20;index"`             // owner/manager/student
	Status         string     `json:"status" gorm:"default:'active';size:20"`         // pending/active/inactive/archived
	Phone          *string    `json:"phone" gorm:"size:30"`
	Whatsapp       *string    `json:"whatsapp" gorm:"size:30"`
	ContactChannel *string    `json:"contact_channel" gorm:"size:20"`                 // phone/whatsapp/email
	LastLoginAt    *time.Time `json:"last_login_at"`

	// 关联
	Accommodations  []Accommodation `gorm:"many2many:manager_accommodations;" json:"accommodations,omitempty"`
	StudentProfile  *StudentProfile `gorm:"foreignKey:UserID" json:"student_profile,omitempty"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 账号角色常量
const (
	UserRoleOwner   = "owner"
	UserRoleManager = "manager"
	UserRoleStudent = "student"
)

// 账号状态常量
const (
	UserStatusPending  = "pending"
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusArchived = "archived"
)

// SetPassword 设置密码
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// FullName 姓名全称
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
