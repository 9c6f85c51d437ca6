package handlers

import (
	"awp/internal/models"
	"awp/internal/services"
	"awp/pkg/response"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ControllerHandler 无线控制器代理处理器
// 以公寓为入口解析控制器站点，避免前端直接接触站点ID
type ControllerHandler struct {
	controllerService    *services.ControllerService
	accommodationService *services.AccommodationService
}

// NewControllerHandler 创建控制器代理处理器
func NewControllerHandler(controllerService *services.ControllerService, accommodationService *services.AccommodationService) *ControllerHandler {
	return &ControllerHandler{
		controllerService:    controllerService,
		accommodationService: accommodationService,
	}
}

// GetSites 控制器站点列表（仅业主）
func (h *ControllerHandler) GetSites(c *gin.Context) {
	resp, err := h.controllerService.GetSites()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// GetDevices 公寓站点的AP设备列表
func (h *ControllerHandler) GetDevices(c *gin.Context) {
	siteID, ok := h.resolveSite(c)
	if !ok {
		return
	}

	resp, err := h.controllerService.GetDevices(siteID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// GetClients 公寓站点的在线客户端列表
func (h *ControllerHandler) GetClients(c *gin.Context) {
	siteID, ok := h.resolveSite(c)
	if !ok {
		return
	}

	// 除分页外的查询参数原样转发给控制器
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if key == "page" || key == "page_size" || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}

	resp, err := h.controllerService.GetClients(siteID, params)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// BlockClient 封禁客户端
func (h *ControllerHandler) BlockClient(c *gin.Context) {
	siteID, ok := h.resolveSite(c)
	if !ok {
		return
	}

	resp, err := h.controllerService.BlockClient(siteID, c.Param("mac"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// UnblockClient 解封客户端
func (h *ControllerHandler) UnblockClient(c *gin.Context) {
	siteID, ok := h.resolveSite(c)
	if !ok {
		return
	}

	resp, err := h.controllerService.UnblockClient(siteID, c.Param("mac"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// UpdateWLANPasswordRequest 修改WLAN密码请求
type UpdateWLANPasswordRequest struct {
	WLANID   string `json:"wlan_id" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateWLANPassword 修改公寓站点的WLAN密码
func (h *ControllerHandler) UpdateWLANPassword(c *gin.Context) {
	siteID, ok := h.resolveSite(c)
	if !ok {
		return
	}

	var req UpdateWLANPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	resp, err := h.controllerService.UpdateWLANPassword(siteID, req.WLANID, req.Password)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, resp)
}

// resolveSite 解析公寓对应的控制器站点并做权限检查
func (h *ControllerHandler) resolveSite(c *gin.Context) (string, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "公寓ID格式错误")
		return "", false
	}

	// 管理员只能操作自己名下公寓的站点
	role := c.GetString("role")
	if role == models.UserRoleManager && !h.accommodationService.ManagesAccommodation(c.GetUint("user_id"), uint(id)) {
		response.Forbidden(c, "只能操作自己管理的公寓")
		return "", false
	}

	accommodation, err := h.accommodationService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "公寓不存在")
		return "", false
	}

	if accommodation.ControllerSiteID == nil || *accommodation.ControllerSiteID == "" {
		response.BadRequest(c, "该公寓未绑定控制器站点")
		return "", false
	}

	return *accommodation.ControllerSiteID, true
}
