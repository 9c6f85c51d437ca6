package services

import (
	"awp/internal/models"
	"awp/pkg/logger"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService 审计日志服务（只写）
type AuditService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewAuditService 创建审计日志服务
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{
		db:  db,
		log: logger.GetLogger(),
	}
}

// Record 写入一条审计记录
// 审计是旁路：写入失败只记日志，不影响业务结果
func (s *AuditService) Record(actorID *uint, action, target string, details map[string]interface{}) {
	entry := &models.AuditLog{
		ActorID: actorID,
		Action:  action,
		Target:  target,
	}

	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			s.log.Errorf("序列化审计详情失败: %v", err)
		} else {
			entry.Details = data
		}
	}

	if err := s.db.Create(entry).Error; err != nil {
		s.log.WithFields(logrus.Fields{
			"action": action,
			"target": target,
		}).Errorf("写入审计日志失败: %v", err)
	}
}

// GetWithFiltersAndPage 审计日志查询（分页版本）
func (s *AuditService) GetWithFiltersAndPage(action string, actorID *uint, page, pageSize int) ([]*models.AuditLog, int64, error) {
	var logs []*models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{})

	if action != "" {
		query = query.Where("action = ?", action)
	}
	if actorID != nil {
		query = query.Where("actor_id = ?", *actorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
