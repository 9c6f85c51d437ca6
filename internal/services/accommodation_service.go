package services

import (
	"fmt"

	"awp/internal/models"

	"gorm.io/gorm"
)

// AccommodationService 公寓服务
type AccommodationService struct {
	db *gorm.DB
}

// NewAccommodationService 创建公寓服务
func NewAccommodationService(db *gorm.DB) *AccommodationService {
	return &AccommodationService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建公寓
func (s *AccommodationService) Create(name, address, city string, controllerSiteID *string) (*models.Accommodation, error) {
	if name == "" {
		return nil, fmt.Errorf("公寓名称不能为空")
	}

	accommodation := &models.Accommodation{
		Name:             name,
		Address:          address,
		City:             city,
		ControllerSiteID: controllerSiteID,
		Status:           models.AccommodationStatusActive,
	}

	err := s.db.Create(accommodation).Error
	return accommodation, err
}

// GetByID 根据ID获取公寓
func (s *AccommodationService) GetByID(id uint) (*models.Accommodation, error) {
	var accommodation models.Accommodation
	err := s.db.Preload("Managers").First(&accommodation, id).Error
	return &accommodation, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *AccommodationService) GetWithFiltersAndPage(status, keyword string, page, pageSize int) ([]*models.Accommodation, int64, error) {
	var accommodations []*models.Accommodation
	var total int64

	query := s.db.Model(&models.Accommodation{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR address LIKE ? OR city LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&accommodations).Error
	if err != nil {
		return nil, 0, err
	}

	return accommodations, total, nil
}

// Update 更新公寓
func (s *AccommodationService) Update(id uint, name, address, city string, controllerSiteID *string, status string) (*models.Accommodation, error) {
	if name == "" {
		return nil, fmt.Errorf("公寓名称不能为空")
	}
	if status != models.AccommodationStatusActive && status != models.AccommodationStatusInactive {
		return nil, fmt.Errorf("状态只能是active或inactive")
	}

	var accommodation models.Accommodation
	err := s.db.First(&accommodation, id).Error
	if err != nil {
		return nil, err
	}

	accommodation.Name = name
	accommodation.Address = address
	accommodation.City = city
	accommodation.ControllerSiteID = controllerSiteID
	accommodation.Status = status

	err = s.db.Save(&accommodation).Error
	return &accommodation, err
}

// Delete 删除公寓
func (s *AccommodationService) Delete(id uint) error {
	// 有学生入住或邀请码引用的公寓不允许删除
	var profileCount int64
	s.db.Model(&models.StudentProfile{}).Where("accommodation_id = ?", id).Count(&profileCount)
	if profileCount > 0 {
		return fmt.Errorf("公寓下仍有学生档案，不能删除")
	}

	var codeCount int64
	s.db.Model(&models.InviteCode{}).Where("accommodation_id = ?", id).Count(&codeCount)
	if codeCount > 0 {
		return fmt.Errorf("公寓下仍有邀请码记录，不能删除")
	}

	return s.db.Delete(&models.Accommodation{}, id).Error
}

// ========== 管理员关联方法 ==========

// AddManager 为公寓添加管理员
func (s *AccommodationService) AddManager(accommodationID, userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("账号不存在")
	}
	if user.Role != models.UserRoleManager && user.Role != models.UserRoleOwner {
		return fmt.Errorf("只有管理员账号可以关联公寓")
	}

	var count int64
	s.db.Model(&models.ManagerAccommodation{}).
		Where("user_id = ? AND accommodation_id = ?", userID, accommodationID).
		Count(&count)
	if count > 0 {
		return fmt.Errorf("该管理员已关联此公寓")
	}

	link := &models.ManagerAccommodation{
		UserID:          userID,
		AccommodationID: accommodationID,
	}
	return s.db.Create(link).Error
}

// RemoveManager 移除公寓管理员
func (s *AccommodationService) RemoveManager(accommodationID, userID uint) error {
	return s.db.Where("user_id = ? AND accommodation_id = ?", userID, accommodationID).
		Delete(&models.ManagerAccommodation{}).Error
}

// GetManagedAccommodations 获取管理员名下的公寓
func (s *AccommodationService) GetManagedAccommodations(userID uint) ([]models.Accommodation, error) {
	var user models.User
	err := s.db.Preload("Accommodations").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return user.Accommodations, nil
}

// ManagesAccommodation 检查管理员是否管理指定公寓
func (s *AccommodationService) ManagesAccommodation(userID, accommodationID uint) bool {
	var count int64
	s.db.Model(&models.ManagerAccommodation{}).
		Where("user_id = ? AND accommodation_id = ?", userID, accommodationID).
		Count(&count)
	return count > 0
}

// ========== 学生名册方法 ==========

// GetStudentsWithPage 获取公寓学生名册（分页版本）
func (s *AccommodationService) GetStudentsWithPage(accommodationID uint, status string, page, pageSize int) ([]*models.StudentProfile, int64, error) {
	var profiles []*models.StudentProfile
	var total int64

	query := s.db.Model(&models.StudentProfile{}).Where("accommodation_id = ?", accommodationID)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}
