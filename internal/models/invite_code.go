package models

import (
	"time"
)

// InviteCode 邀请码
//
// 邀请码授权创建一个管理员或学生账号。令牌全局唯一且永不复用，
// 状态机：unused → used（兑换成功，终态）/ expired（过期或撤销，终态）。
type InviteCode struct {
	BaseModel
	Token           string     `json:"token" gorm:"uniqueIndex;not null;size:30"`
	IssuerID        uint       `json:"issuer_id" gorm:"not null;index"`
	Role            string     `json:"role" gorm:"not null;size:20"` // manager/student
	AccommodationID uint       `json:"accommodation_id" gorm:"not null;index"`
	Status          string     `json:"status" gorm:"not null;default:'unused';size:20;index"` // unused/used/expired
	ExpiresAt       time.Time  `json:"expires_at" gorm:"not null"`
	UsedByID        *uint      `json:"used_by_id"`
	UsedAt          *time.Time `json:"used_at"`

	// 关联
	Issuer        User          `gorm:"foreignKey:IssuerID" json:"issuer,omitempty"`
	UsedBy        *User         `gorm:"foreignKey:UsedByID" json:"used_by,omitempty"`
	Accommodation Accommodation `gorm:"foreignKey:AccommodationID" json:"accommodation,omitempty"`
}

// TableName 表名
func (InviteCode) TableName() string {
	return "invite_codes"
}

// 邀请码状态常量
const (
	InviteCodeStatusUnused  = "unused"
	InviteCodeStatusUsed    = "used"
	InviteCodeStatusExpired = "expired"
)

// 邀请码目标角色常量
const (
	InviteCodeRoleManager = "manager"
	InviteCodeRoleStudent = "student"
)

// IsRedeemable 检查邀请码在指定时刻是否可兑换
// 过期判定是惰性的：status仍为unused但已过期的码同样不可兑换
func (ic *InviteCode) IsRedeemable(now time.Time) bool {
	return ic.Status == InviteCodeStatusUnused && ic.ExpiresAt.After(now)
}

// MarkUsed 标记为已使用
func (ic *InviteCode) MarkUsed(userID uint, now time.Time) {
	ic.Status = InviteCodeStatusUsed
	ic.UsedByID = &userID
	ic.UsedAt = &now
}
