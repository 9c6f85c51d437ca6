package handlers

import (
	"awp/internal/services"
	"awp/pkg/pagination"
	"awp/pkg/response"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AccommodationHandler 公寓处理器
type AccommodationHandler struct {
	accommodationService *services.AccommodationService
}

// NewAccommodationHandler 创建公寓处理器
func NewAccommodationHandler(accommodationService *services.AccommodationService) *AccommodationHandler {
	return &AccommodationHandler{accommodationService: accommodationService}
}

// AccommodationRequest 公寓创建/更新请求
type AccommodationRequest struct {
	Name             string  `json:"name" binding:"required"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	ControllerSiteID *string `json:"controller_site_id"`
	Status           string  `json:"status"`
}

// Create 创建公寓
func (h *AccommodationHandler) Create(c *gin.Context) {
	var req AccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	accommodation, err := h.accommodationService.Create(req.Name, req.Address, req.City, req.ControllerSiteID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, accommodation)
}

// GetAll 公寓列表（分页）
func (h *AccommodationHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	status := c.Query("status")
	keyword := c.Query("keyword")

	accommodations, total, err := h.accommodationService.GetWithFiltersAndPage(status, keyword, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询公寓列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, accommodations, pageInfo)
}

// GetByID 公寓详情
func (h *AccommodationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "公寓ID格式错误")
		return
	}

	accommodation, err := h.accommodationService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "公寓不存在")
		return
	}

	response.Success(c, accommodation)
}

// Update 更新公寓
func (h *AccommodationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "公寓ID格式错误")
		return
	}

	var req AccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	accommodation, err := h.accommodationService.Update(uint(id), req.Name, req.Address, req.City, req.ControllerSiteID, req.Status)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, accommodation)
}

// Delete 删除公寓
func (h *AccommodationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "公寓ID格式错误")
		return
	}

	if err := h.accommodationService.Delete(uint(id)); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "公寓已删除", nil)
}

// AddManagerRequest 添加管理员请求
type AddManagerRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AddManager 为公寓添加管理员
func (h *AccommodationHandler) AddManager(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "公寓ID格式错误")
		return
	}

	var req AddManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.accommodationService.AddManager(uint(id), req.UserID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "已添加管理员", nil)
}

// RemoveManager 移除公寓管理员
func (h *AccommodationHandler) RemoveManager(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "公寓ID格式错误")
		return
	}

	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账号ID格式错误")
		return
	}

	if err := h.accommodationService.RemoveManager(uint(id), uint(userID)); err != nil {
		response.ServerError(c, "移除管理员失败")
		return
	}

	response.SuccessWithMessage(c, "已移除管理员", nil)
}

// GetStudents 公寓学生名册（分页）
func (h *AccommodationHandler) GetStudents(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "公寓ID格式错误")
		return
	}

	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	profiles, total, err := h.accommodationService.GetStudentsWithPage(uint(id), status, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询学生名册失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, profiles, pageInfo)
}
