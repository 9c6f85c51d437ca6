package services

import (
	"awp/internal/models"
	"awp/pkg/logger"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 邀请码令牌格式：四组四位，如 A2B3-C4D5-E6F7-G8H9
// 字母表剔除了易混淆字符（0/O、1/I/L），方便人工输入
const (
	tokenAlphabet   = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	tokenGroupSize  = 4
	tokenGroupCount = 4
	tokenSeparator  = "-"

	// 生成重试上限。字母表31字符、16位有效长度，碰撞概率可忽略，
	// 上限只是对随机源异常的兜底
	maxGenerateRetries = 10
)

// CodeService 邀请码服务
type CodeService struct {
	db       *gorm.DB
	log      *logrus.Logger
	newToken func() (string, error)
}

// NewCodeService 创建邀请码服务
func NewCodeService(db *gorm.DB) *CodeService {
	return &CodeService{
		db:       db,
		log:      logger.GetLogger(),
		newToken: randomToken,
	}
}

// Generate 签发邀请码
// 签发人、目标角色、目标公寓与有效期共同决定兑换后开通的账号形态
func (s *CodeService) Generate(issuerID uint, role string, accommodationID uint, ttl time.Duration) (*models.InviteCode, error) {
	if role != models.InviteCodeRoleManager && role != models.InviteCodeRoleStudent {
		return nil, fmt.Errorf("邀请码目标角色只能是manager或student")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("邀请码有效期必须大于0")
	}

	// 检查公寓是否存在
	var accommodationCount int64
	if err := s.db.Model(&models.Accommodation{}).Where("id = ?", accommodationID).Count(&accommodationCount).Error; err != nil {
		return nil, err
	}
	if accommodationCount == 0 {
		return nil, fmt.Errorf("公寓不存在")
	}

	// 生成令牌：碰撞时换新令牌重试，重试有界
	var token string
	for attempt := 0; ; attempt++ {
		if attempt >= maxGenerateRetries {
			s.log.Errorf("邀请码生成连续碰撞%d次，疑似随机源异常", maxGenerateRetries)
			return nil, ErrGenerationExhausted
		}

		candidate, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("生成邀请码令牌失败: %v", err)
		}

		var count int64
		if err := s.db.Model(&models.InviteCode{}).Where("token = ?", candidate).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			token = candidate
			break
		}
	}

	code := &models.InviteCode{
		Token:           token,
		IssuerID:        issuerID,
		Role:            role,
		AccommodationID: accommodationID,
		Status:          models.InviteCodeStatusUnused,
		ExpiresAt:       time.Now().Add(ttl),
	}

	if err := s.db.Create(code).Error; err != nil {
		s.log.Errorf("创建邀请码失败: %v", err)
		return nil, fmt.Errorf("创建邀请码失败")
	}

	s.log.WithFields(logrus.Fields{
		"code_id":          code.ID,
		"issuer_id":        issuerID,
		"role":             role,
		"accommodation_id": accommodationID,
	}).Info("签发邀请码")

	return code, nil
}

// GetByToken 根据令牌查询邀请码
func (s *CodeService) GetByToken(token string) (*models.InviteCode, error) {
	var code models.InviteCode
	err := s.db.Where("token = ?", NormalizeToken(token)).
		Preload("Accommodation").
		First(&code).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

// GetByID 根据ID查询邀请码
func (s *CodeService) GetByID(id uint) (*models.InviteCode, error) {
	var code models.InviteCode
	err := s.db.Preload("Accommodation").First(&code, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

// Revoke 撤销邀请码（unused → expired）
// 已使用或已过期的码不允许撤销。状态转换用条件更新一步完成：
// 与并发兑换交错时写入互斥，used是终态，不会被撤销覆盖
func (s *CodeService) Revoke(codeID uint) error {
	result := s.db.Model(&models.InviteCode{}).
		Where("id = ? AND status = ?", codeID, models.InviteCodeStatusUnused).
		Update("status", models.InviteCodeStatusExpired)
	if result.Error != nil {
		return fmt.Errorf("撤销邀请码失败")
	}

	if result.RowsAffected == 0 {
		var code models.InviteCode
		if err := s.db.First(&code, codeID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrCodeNotFound
			}
			return err
		}
		return ErrInvalidTransition
	}

	s.log.WithFields(logrus.Fields{
		"code_id": codeID,
	}).Info("撤销邀请码")

	return nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
// 列表读取前顺带把已过期但状态仍为unused的码纠正为expired（惰性过期）
func (s *CodeService) GetWithFiltersAndPage(accommodationID *uint, status string, page, pageSize int) ([]*models.InviteCode, int64, error) {
	if err := s.correctOverdue(); err != nil {
		return nil, 0, err
	}

	var codes []*models.InviteCode
	var total int64

	query := s.db.Model(&models.InviteCode{})

	if accommodationID != nil {
		query = query.Where("accommodation_id = ?", *accommodationID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Accommodation").Preload("Issuer").Preload("UsedBy").
		Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&codes).Error
	if err != nil {
		return nil, 0, err
	}

	return codes, total, nil
}

// correctOverdue 纠正过期状态
func (s *CodeService) correctOverdue() error {
	result := s.db.Model(&models.InviteCode{}).
		Where("status = ? AND expires_at < ?", models.InviteCodeStatusUnused, time.Now()).
		Update("status", models.InviteCodeStatusExpired)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Infof("纠正过期邀请码 %d 条", result.RowsAffected)
	}
	return nil
}

// NormalizeToken 规范化人工输入的令牌（去空格、统一大写）
func NormalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// randomToken 从固定字母表生成分组令牌
func randomToken() (string, error) {
	raw := make([]byte, tokenGroupSize*tokenGroupCount)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	groups := make([]string, 0, tokenGroupCount)
	var group strings.Builder
	for i, b := range raw {
		group.WriteByte(tokenAlphabet[int(b)%len(tokenAlphabet)])
		if (i+1)%tokenGroupSize == 0 {
			groups = append(groups, group.String())
			group.Reset()
		}
	}

	return strings.Join(groups, tokenSeparator), nil
}
