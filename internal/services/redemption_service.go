package services

import (
	"awp/internal/models"
	"awp/pkg/logger"
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RedemptionService 邀请码兑换网关
//
// 保证同一令牌的并发兑换恰好一个成功：在一个事务内
// 先对码记录加行级排他锁，锁内复核可兑换性，再委托开通服务
// 创建账号，最后把码置为used并提交。任何一步失败整体回滚，
// 失败的尝试不会作废邀请码。
type RedemptionService struct {
	db        *gorm.DB
	log       *logrus.Logger
	provision *ProvisionService
	audit     *AuditService
}

// NewRedemptionService 创建兑换网关
func NewRedemptionService(db *gorm.DB) *RedemptionService {
	return &RedemptionService{
		db:        db,
		log:       logger.GetLogger(),
		provision: NewProvisionService(),
		audit:     NewAuditService(db),
	}
}

// Redeem 兑换邀请码并开通账号
// ctx携带调用方超时，超时会令事务干净回滚
func (s *RedemptionService) Redeem(ctx context.Context, token string, input *ProfileInput) (*models.User, error) {
	normalized := NormalizeToken(token)

	var user *models.User
	var code models.InviteCode

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行级锁：同一令牌的并发兑换在此串行化，不影响其他令牌
		if err := lockForUpdate(tx).Where("token = ?", normalized).First(&code).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrCodeNotFound
			}
			return err
		}

		// 复核必须在拿到锁之后：锁前检查无法排除两个调用方
		// 同时观察到unused的竞态
		now := time.Now()
		if !code.IsRedeemable(now) {
			if code.Status == models.InviteCodeStatusUsed {
				return ErrCodeAlreadyUsed
			}
			return ErrCodeExpired
		}

		created, err := s.provision.CreateAccountForCode(tx, &code, input)
		if err != nil {
			return err
		}

		// 码状态写入是事务的最后一步
		code.MarkUsed(created.ID, now)
		if err := tx.Save(&code).Error; err != nil {
			return err
		}

		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 审计在提交之后进行，不占用行锁临界区；
	// 审计失败不能撤销已提交的兑换
	s.audit.Record(&user.ID, models.AuditActionCodeRedeemed, code.Token, map[string]interface{}{
		"code_id":          code.ID,
		"role":             code.Role,
		"accommodation_id": code.AccommodationID,
	})
	s.audit.Record(&user.ID, models.AuditActionAccountCreated, user.Username, map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	s.log.WithFields(logrus.Fields{
		"code_id": code.ID,
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("邀请码兑换成功")

	return user, nil
}

// lockForUpdate 对查询加行级排他锁
// sqlite不支持FOR UPDATE，其单写事务本身已串行化
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
