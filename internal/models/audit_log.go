package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 操作审计日志（只写）
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ActorID   *uint          `gorm:"index" json:"actor_id"` // 系统动作时为空
	Action    string         `gorm:"not null;size:50;index" json:"action"`
	Target    string         `gorm:"size:100" json:"target"`
	Details   datatypes.JSON `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName 表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

// 审计动作常量
const (
	AuditActionCodeIssued     = "code_issued"
	AuditActionCodeRevoked    = "code_revoked"
	AuditActionCodeRedeemed   = "code_redeemed"
	AuditActionAccountCreated = "account_created"
)
