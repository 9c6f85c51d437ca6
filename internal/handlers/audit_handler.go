package handlers

import (
	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AuditHandler 审计日志处理器
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler 创建审计日志处理器
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAll 审计日志列表（分页，仅业主）
func (h *AuditHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	action := c.Query("action")

	var actorID *uint
	if idStr := c.Query("actor_id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			response.BadRequest(c, "账号ID格式错误")
			return
		}
		uid := uint(id)
		actorID = &uid
	}

	logs, total, err := h.auditService.GetWithFiltersAndPage(action, actorID, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询审计日志失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, logs, pageInfo)
}
