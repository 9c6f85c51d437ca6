package services

import (
	"awp/internal/models"
	"awp/pkg/config"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ProfileInput 兑换邀请码时提交的个人资料
// Username可不填：学生自助入驻时由姓名推导
type ProfileInput struct {
	FirstName       string  `json:"first_name" validate:"required,max=50"`
	LastName        string  `json:"last_name" validate:"required,max=50"`
	Email           string  `json:"email" validate:"required,email,max=100"`
	Username        string  `json:"username" validate:"omitempty,min=3,max=50,alphanum"`
	Password        string  `json:"password" validate:"required,min=6,max=50"`
	PasswordConfirm string  `json:"password_confirm" validate:"required"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	Whatsapp        *string `json:"whatsapp" validate:"omitempty,max=30"`
	ContactChannel  *string `json:"contact_channel" validate:"omitempty,oneof=phone whatsapp email"`
	Room            *string `json:"room" validate:"omitempty,max=50"`
}

// ProvisionService 账号开通服务
//
// 只在调用方的事务内工作，自身从不开启事务，
// 以保证所有写入与兑换网关持有的行锁在同一个原子单元内
type ProvisionService struct {
	validate *validator.Validate
}

// NewProvisionService 创建账号开通服务
func NewProvisionService() *ProvisionService {
	return &ProvisionService{
		validate: validator.New(),
	}
}

// CreateAccountForCode 按邀请码的目标角色创建账号及角色记录
// 任何一步失败都向上返回错误，由调用方回滚整个事务
func (s *ProvisionService) CreateAccountForCode(tx *gorm.DB, code *models.InviteCode, input *ProfileInput) (*models.User, error) {
	// 1. 校验资料，校验失败不产生任何写入
	if err := s.validateProfile(input); err != nil {
		return nil, err
	}

	// 2. 推导用户名。只有学生自助入驻可不填，
	// 管理员开通必须显式指定登录名
	username := input.Username
	if username == "" {
		if code.Role != models.InviteCodeRoleStudent {
			return nil, NewValidationError(map[string]string{"username": "必填项不能为空"})
		}
		derived, err := s.deriveUsername(tx, input.FirstName, input.LastName)
		if err != nil {
			return nil, err
		}
		username = derived
	}

	// 3. 唯一性检查放在事务内，避免与其他创建路径产生二次竞态
	var usernameCount int64
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&usernameCount).Error; err != nil {
		return nil, err
	}
	if usernameCount > 0 {
		return nil, ErrLoginTaken
	}

	var emailCount int64
	if err := tx.Model(&models.User{}).Where("email = ?", input.Email).Count(&emailCount).Error; err != nil {
		return nil, err
	}
	if emailCount > 0 {
		return nil, ErrEmailTaken
	}

	// 4. 创建账号
	user := &models.User{
		Username:       username,
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Role:           code.Role,
		Status:         initialStatus(),
		Phone:          input.Phone,
		Whatsapp:       input.Whatsapp,
		ContactChannel: input.ContactChannel,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, err
	}

	// 5. 按目标角色创建角色记录
	switch code.Role {
	case models.InviteCodeRoleManager:
		link := &models.ManagerAccommodation{
			UserID:          user.ID,
			AccommodationID: code.AccommodationID,
		}
		if err := tx.Create(link).Error; err != nil {
			return nil, err
		}
	case models.InviteCodeRoleStudent:
		profile := &models.StudentProfile{
			UserID:          user.ID,
			AccommodationID: code.AccommodationID,
			Status:          models.StudentStatusActive,
			Room:            input.Room,
		}
		if err := tx.Create(profile).Error; err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("未知的邀请码目标角色: %s", code.Role)
	}

	return user, nil
}

// validateProfile 校验个人资料，返回字段级错误映射
func (s *ProvisionService) validateProfile(input *ProfileInput) error {
	fields := make(map[string]string)

	if err := s.validate.Struct(input); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fieldErr := range validationErrors {
			fields[fieldName(fieldErr)] = fieldMessage(fieldErr)
		}
	}

	if input.Password != "" && input.PasswordConfirm != "" && input.Password != input.PasswordConfirm {
		fields["password_confirm"] = "两次输入的密码不一致"
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// deriveUsername 由姓名推导用户名，重名时追加数字后缀
func (s *ProvisionService) deriveUsername(tx *gorm.DB, firstName, lastName string) (string, error) {
	base := sanitizeUsername(firstName + lastName)
	if base == "" {
		base = "student"
	}

	candidate := base
	for suffix := 2; ; suffix++ {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}

// sanitizeUsername 仅保留字母和数字，统一小写
func sanitizeUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() > 50 {
		return b.String()[:50]
	}
	return b.String()
}

// initialStatus 兑换后账号的初始状态（策略可配置）
func initialStatus() string {
	status := config.GetConfig().Onboard.InitialStatus
	if status != models.UserStatusActive && status != models.UserStatusPending {
		return models.UserStatusActive
	}
	return status
}

// fieldName 取JSON风格的字段名
func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "FirstName":
		return "first_name"
	case "LastName":
		return "last_name"
	case "PasswordConfirm":
		return "password_confirm"
	case "ContactChannel":
		return "contact_channel"
	default:
		return strings.ToLower(fe.Field())
	}
}

// fieldMessage 校验失败原因
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填项不能为空"
	case "email":
		return "邮箱格式不正确"
	case "min":
		return fmt.Sprintf("长度不能少于%s位", fe.Param())
	case "max":
		return fmt.Sprintf("长度不能超过%s位", fe.Param())
	case "alphanum":
		return "只能包含字母和数字"
	case "oneof":
		return "取值不在允许范围内"
	default:
		return "格式不正确"
	}
}
