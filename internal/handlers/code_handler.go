package handlers

import (
	"awp/internal/models"
	"awp/internal/services"
	"awp/pkg/config"
	"awp/pkg/pagination"
	"awp/pkg/response"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// CodeHandler 邀请码处理器
type CodeHandler struct {
	codeService          *services.CodeService
	accommodationService *services.AccommodationService
	auditService         *services.AuditService
}

// NewCodeHandler 创建邀请码处理器
func NewCodeHandler(codeService *services.CodeService, accommodationService *services.AccommodationService, auditService *services.AuditService) *CodeHandler {
	return &CodeHandler{
		codeService:          codeService,
		accommodationService: accommodationService,
		auditService:         auditService,
	}
}

// CreateCodeRequest 签发邀请码请求
type CreateCodeRequest struct {
	Role            string `json:"role" binding:"required,oneof=manager student"`
	AccommodationID uint   `json:"accommodation_id" binding:"required"`
	TTL             string `json:"ttl"` // 如 "168h"，不填用默认值
}

// Create 签发邀请码
func (h *CodeHandler) Create(c *gin.Context) {
	var req CreateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	issuerID := c.GetUint("user_id")
	role := c.GetString("role")

	// 管理员只能为自己名下的公寓签发，业主不受限
	if role == models.UserRoleManager && !h.accommodationService.ManagesAccommodation(issuerID, req.AccommodationID) {
		response.Forbidden(c, "只能为自己管理的公寓签发邀请码")
		return
	}

	// 管理员不能签发管理员码
	if role == models.UserRoleManager && req.Role == models.InviteCodeRoleManager {
		response.Forbidden(c, "管理员邀请码只能由业主签发")
		return
	}

	ttl := h.resolveTTL(req.TTL)
	code, err := h.codeService.Generate(issuerID, req.Role, req.AccommodationID, ttl)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.auditService.Record(&issuerID, models.AuditActionCodeIssued, code.Token, map[string]interface{}{
		"code_id":          code.ID,
		"role":             code.Role,
		"accommodation_id": code.AccommodationID,
		"expires_at":       code.ExpiresAt,
	})

	response.Success(c, code)
}

// GetAll 邀请码列表（分页）
func (h *CodeHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	var accommodationID *uint
	if idStr := c.Query("accommodation_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			response.BadRequest(c, "公寓ID格式错误")
			return
		}
		uid := uint(id)
		accommodationID = &uid
	}

	codes, total, err := h.codeService.GetWithFiltersAndPage(accommodationID, status, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询邀请码列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, codes, pageInfo)
}

// GetByID 邀请码详情
func (h *CodeHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "邀请码ID格式错误")
		return
	}

	code, err := h.codeService.GetByID(uint(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, code)
}

// Revoke 撤销邀请码
func (h *CodeHandler) Revoke(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "邀请码ID格式错误")
		return
	}

	code, err := h.codeService.GetByID(uint(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	actorID := c.GetUint("user_id")
	role := c.GetString("role")

	// 管理员只能撤销自己名下公寓的码
	if role == models.UserRoleManager && !h.accommodationService.ManagesAccommodation(actorID, code.AccommodationID) {
		response.Forbidden(c, "只能撤销自己管理的公寓的邀请码")
		return
	}

	if err := h.codeService.Revoke(uint(id)); err != nil {
		writeServiceError(c, err)
		return
	}

	h.auditService.Record(&actorID, models.AuditActionCodeRevoked, code.Token, map[string]interface{}{
		"code_id": code.ID,
	})

	response.SuccessWithMessage(c, "邀请码已撤销", nil)
}

// resolveTTL 解析有效期，非法或缺省时回退到配置默认值
func (h *CodeHandler) resolveTTL(raw string) time.Duration {
	defaultTTL, err := time.ParseDuration(config.GetConfig().Onboard.DefaultCodeTTL)
	if err != nil {
		defaultTTL = 7 * 24 * time.Hour
	}

	if raw == "" {
		return defaultTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		return defaultTTL
	}
	return ttl
}
