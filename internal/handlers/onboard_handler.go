package handlers

import (
	"awp/internal/models"
	"awp/internal/services"
	"awp/pkg/response"
	"time"

	"github.com/gin-gonic/gin"
)

// OnboardHandler 自助入驻处理器
//
// 学生入驻和管理员开通共用兑换网关，端点区分目标角色：
// 提交到错误端点的令牌直接拒绝，不消耗邀请码。
type OnboardHandler struct {
	codeService       *services.CodeService
	redemptionService *services.RedemptionService
}

// NewOnboardHandler 创建自助入驻处理器
func NewOnboardHandler(codeService *services.CodeService, redemptionService *services.RedemptionService) *OnboardHandler {
	return &OnboardHandler{
		codeService:       codeService,
		redemptionService: redemptionService,
	}
}

// Preview 入驻前预览邀请码信息（无需登录）
func (h *OnboardHandler) Preview(c *gin.Context) {
	code, err := h.codeService.GetByToken(c.Param("token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"role":          code.Role,
		"accommodation": code.Accommodation.Name,
		"city":          code.Accommodation.City,
		"redeemable":    code.IsRedeemable(time.Now()),
		"expires_at":    code.ExpiresAt,
	})
}

// OnboardStudent 学生自助入驻
func (h *OnboardHandler) OnboardStudent(c *gin.Context) {
	h.redeem(c, models.InviteCodeRoleStudent)
}

// ManagerSetup 管理员账号开通
func (h *OnboardHandler) ManagerSetup(c *gin.Context) {
	h.redeem(c, models.InviteCodeRoleManager)
}

func (h *OnboardHandler) redeem(c *gin.Context, expectedRole string) {
	token := c.Param("token")

	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 端点与码的目标角色必须一致
	code, err := h.codeService.GetByToken(token)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if code.Role != expectedRole {
		response.BadRequest(c, "邀请码类型与入驻方式不匹配")
		return
	}

	user, err := h.redemptionService.Redeem(c.Request.Context(), token, &input)
	if err != nil && !isUserFacing(err) {
		// 基础设施类失败透明重试一次（瞬时连接抖动）；
		// 事务已整体回滚，重试不会产生半成品账号
		user, err = h.redemptionService.Redeem(c.Request.Context(), token, &input)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, "账号开通成功", gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"status":   user.Status,
	})
}
