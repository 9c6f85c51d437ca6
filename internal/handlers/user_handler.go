package handlers

import (
	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserHandler 账号处理器
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler 创建账号处理器
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest 创建账号请求
type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Role      string  `json:"role" binding:"required,oneof=owner manager student"`
	Phone     *string `json:"phone"`
}

// Create 创建账号（管理后台直接创建）
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Create(req.Username, req.Email, req.Password, req.FirstName, req.LastName, req.Role, req.Phone)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, user)
}

// GetAll 账号列表（分页）
func (h *UserHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	role := c.Query("role")
	status := c.Query("status")
	keyword := c.Query("keyword")

	users, total, err := h.userService.GetWithFiltersAndPage(role, status, keyword, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询账号列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// GetByID 账号详情
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账号ID格式错误")
		return
	}

	user, err := h.userService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "账号不存在")
		return
	}

	response.Success(c, user)
}

// UpdateUserRequest 更新账号请求
type UpdateUserRequest struct {
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Phone          *string `json:"phone"`
	Whatsapp       *string `json:"whatsapp"`
	ContactChannel *string `json:"contact_channel"`
	Status         string  `json:"status" binding:"required"`
}

// Update 更新账号
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账号ID格式错误")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Update(uint(id), req.FirstName, req.LastName, req.Email, req.Phone, req.Whatsapp, req.ContactChannel, req.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, user)
}

// Activate 激活账号
func (h *UserHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账号ID格式错误")
		return
	}

	user, err := h.userService.Activate(uint(id))
	if err != nil {
		response.NotFound(c, "账号不存在")
		return
	}

	response.Success(c, user)
}

// Deactivate 停用账号
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账号ID格式错误")
		return
	}

	user, err := h.userService.Deactivate(uint(id))
	if err != nil {
		response.NotFound(c, "账号不存在")
		return
	}

	response.Success(c, user)
}

// Archive 归档账号
func (h *UserHandler) Archive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账号ID格式错误")
		return
	}

	user, err := h.userService.Archive(uint(id))
	if err != nil {
		response.NotFound(c, "账号不存在")
		return
	}

	response.Success(c, user)
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ResetPassword 重置密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账号ID格式错误")
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.ResetPassword(uint(id), req.Password)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, user)
}
