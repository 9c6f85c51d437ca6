package services

import (
	"awp/internal/models"
	"awp/pkg/cache"
	"awp/pkg/config"
	"awp/pkg/controller"
	"awp/pkg/logger"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ControllerService 无线控制器代理服务
//
// 对上游控制器云端API做参数转发，响应经Redis缓存；
// 定时刷新各公寓站点的在线客户端数供实时推送使用。
// 控制器调用永远不会出现在邀请码兑换事务内。
type ControllerService struct {
	db      *gorm.DB
	log     *logrus.Logger
	client  *controller.Client
	cache   *cache.RedisCache
	cron    *cron.Cron
	ttl     time.Duration
	running bool
}

// NewControllerService 创建控制器代理服务
func NewControllerService(db *gorm.DB, redisCache *cache.RedisCache) *ControllerService {
	cfg := config.GetConfig()
	client := controller.NewClient(
		cfg.Controller.BaseURL,
		cfg.Controller.APIToken,
		time.Duration(cfg.Controller.Timeout)*time.Second,
	)

	return &ControllerService{
		db:     db,
		log:    logger.GetLogger(),
		client: client,
		cache:  redisCache,
		cron:   cron.New(),
		ttl:    time.Duration(cfg.Controller.CacheTTL) * time.Second,
	}
}

// Start 启动在线客户端统计刷新任务
func (s *ControllerService) Start() error {
	if s.running {
		return fmt.Errorf("控制器同步任务已经在运行")
	}

	interval := config.GetConfig().Controller.SyncInterval
	_, err := s.cron.AddFunc(interval, s.syncClientCounts)
	if err != nil {
		return fmt.Errorf("注册控制器同步任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true
	s.log.Infof("控制器在线统计同步任务启动成功，间隔 %s", interval)
	return nil
}

// Stop 停止刷新任务
func (s *ControllerService) Stop() {
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.log.Info("控制器在线统计同步任务已停止")
}

// ========== 代理方法（带缓存） ==========

// GetSites 站点列表
func (s *ControllerService) GetSites() (*controller.APIResponse, error) {
	return s.cached("sites", func() (*controller.APIResponse, error) {
		return s.client.GetSites()
	})
}

// GetDevices 站点AP设备列表
func (s *ControllerService) GetDevices(siteID string) (*controller.APIResponse, error) {
	return s.cached("devices:"+siteID, func() (*controller.APIResponse, error) {
		return s.client.GetDevices(siteID)
	})
}

// GetClients 站点在线客户端列表（查询参数原样转发）
func (s *ControllerService) GetClients(siteID string, params map[string]string) (*controller.APIResponse, error) {
	// 带自定义参数的查询不复用缓存键，直接透传
	if len(params) > 0 {
		return s.client.GetClients(siteID, params)
	}
	return s.cached("clients:"+siteID, func() (*controller.APIResponse, error) {
		return s.client.GetClients(siteID, nil)
	})
}

// BlockClient 封禁客户端并失效相关缓存
func (s *ControllerService) BlockClient(siteID, clientMAC string) (*controller.APIResponse, error) {
	resp, err := s.client.BlockClient(siteID, clientMAC)
	if err != nil {
		return nil, err
	}
	s.invalidate("clients:" + siteID)
	return resp, nil
}

// UnblockClient 解封客户端并失效相关缓存
func (s *ControllerService) UnblockClient(siteID, clientMAC string) (*controller.APIResponse, error) {
	resp, err := s.client.UnblockClient(siteID, clientMAC)
	if err != nil {
		return nil, err
	}
	s.invalidate("clients:" + siteID)
	return resp, nil
}

// UpdateWLANPassword 修改站点WLAN密码
func (s *ControllerService) UpdateWLANPassword(siteID, wlanID, password string) (*controller.APIResponse, error) {
	return s.client.UpdateWLANPassword(siteID, wlanID, password)
}

// ========== 在线统计 ==========

// SiteClientCount 站点在线客户端统计
type SiteClientCount struct {
	AccommodationID uint   `json:"accommodation_id"`
	Name            string `json:"name"`
	SiteID          string `json:"site_id"`
	OnlineClients   int    `json:"online_clients"`
	SyncedAt        int64  `json:"synced_at"`
}

// GetOnlineCounts 读取各公寓的在线客户端统计（来自缓存）
func (s *ControllerService) GetOnlineCounts() ([]SiteClientCount, error) {
	var counts []SiteClientCount
	err := s.cache.Get("client_counts", &counts)
	if err != nil {
		if cache.IsMiss(err) {
			return []SiteClientCount{}, nil
		}
		return nil, err
	}
	return counts, nil
}

// syncClientCounts 刷新所有绑定了控制器站点的公寓的在线客户端数
func (s *ControllerService) syncClientCounts() {
	var accommodations []models.Accommodation
	err := s.db.Where("controller_site_id IS NOT NULL AND status = ?", models.AccommodationStatusActive).
		Find(&accommodations).Error
	if err != nil {
		s.log.Errorf("加载公寓列表失败: %v", err)
		return
	}

	counts := make([]SiteClientCount, 0, len(accommodations))
	for _, acc := range accommodations {
		siteID := *acc.ControllerSiteID
		resp, err := s.client.GetClients(siteID, nil)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"accommodation_id": acc.ID,
				"site_id":          siteID,
			}).Errorf("拉取在线客户端失败: %v", err)
			continue
		}

		counts = append(counts, SiteClientCount{
			AccommodationID: acc.ID,
			Name:            acc.Name,
			SiteID:          siteID,
			OnlineClients:   countResultItems(resp.Result),
			SyncedAt:        time.Now().Unix(),
		})
	}

	// 统计缓存的生存期放宽到两个同步周期，避免推送间隙读空
	if err := s.cache.Set("client_counts", counts, 2*s.ttl); err != nil {
		s.log.Errorf("写入在线统计缓存失败: %v", err)
	}
}

// cached 缓存读取，未命中时回源并写缓存
func (s *ControllerService) cached(key string, fetch func() (*controller.APIResponse, error)) (*controller.APIResponse, error) {
	var resp controller.APIResponse
	err := s.cache.Get(key, &resp)
	if err == nil {
		return &resp, nil
	}
	if !cache.IsMiss(err) {
		s.log.Errorf("读取控制器缓存失败: %v", err)
	}

	fresh, err := fetch()
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(key, fresh, s.ttl); err != nil {
		s.log.Errorf("写入控制器缓存失败: %v", err)
	}
	return fresh, nil
}

func (s *ControllerService) invalidate(key string) {
	if err := s.cache.Delete(key); err != nil {
		s.log.Errorf("失效控制器缓存失败: %v", err)
	}
}

// countResultItems 上游result为数组时取其长度
func countResultItems(result json.RawMessage) int {
	if len(result) == 0 {
		return 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(result, &items); err != nil {
		return 0
	}
	return len(items)
}
