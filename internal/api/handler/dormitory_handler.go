package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/dto"
	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// DormitoryHandler 宿舍模块 HTTP 处理器
type DormitoryHandler struct {
	dormSvc service.DormitoryService
	errs    *errorResponder
}

// NewDormitoryHandler 创建 DormitoryHandler
func NewDormitoryHandler(dormSvc service.DormitoryService, errs *errorResponder) *DormitoryHandler {
	return &DormitoryHandler{dormSvc: dormSvc, errs: errs}
}

// List 已审核宿舍列表（公开）
// GET /api/v1/dormitories
func (h *DormitoryHandler) List(c *gin.Context) {
	var req dto.DormitoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	items, total, err := h.dormSvc.ListApproved(c.Request.Context(), &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Get 宿舍详情，未审核宿舍仅房东本人与管理员可见
// GET /api/v1/dormitories/:id
func (h *DormitoryHandler) Get(c *gin.Context) {
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.dormSvc.Get(c.Request.Context(), OptionalUser(c), id)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, detail)
}

// Create 房东创建宿舍
// POST /api/v1/dormitories
func (h *DormitoryHandler) Create(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateDormitoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	detail, err := h.dormSvc.Create(c.Request.Context(), ownerID, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.Created(c, detail)
}

// Update 房东编辑宿舍（字段 + 联系方式 + 设施 + 房型）
// PUT /api/v1/dormitories/:id
func (h *DormitoryHandler) Update(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDormitoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	detail, err := h.dormSvc.Update(c.Request.Context(), ownerID, id, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, detail)
}

// Delete 房东删除自己的宿舍
// DELETE /api/v1/dormitories/:id
func (h *DormitoryHandler) Delete(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.dormSvc.OwnerDelete(c.Request.Context(), ownerID, id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMine 房东自己的宿舍
// GET /api/v1/owner/dormitories
func (h *DormitoryHandler) ListMine(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items, err := h.dormSvc.ListMine(c.Request.Context(), ownerID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// AdminList 按审核状态查询（管理员）
// GET /api/v1/admin/dormitories
func (h *DormitoryHandler) AdminList(c *gin.Context) {
	var req dto.AdminDormitoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	items, total, err := h.dormSvc.ListByStatus(c.Request.Context(), &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Approve 审核通过（管理员）
// POST /api/v1/admin/dormitories/:id/approve
func (h *DormitoryHandler) Approve(c *gin.Context) {
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.dormSvc.Approve(c.Request.Context(), id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// Reject 驳回（管理员）
// POST /api/v1/admin/dormitories/:id/reject
func (h *DormitoryHandler) Reject(c *gin.Context) {
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectDormitoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	if err := h.dormSvc.Reject(c.Request.Context(), id, req.Reason); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// AdminDelete 级联删除宿舍（管理员）
// DELETE /api/v1/admin/dormitories/:id
func (h *DormitoryHandler) AdminDelete(c *gin.Context) {
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.dormSvc.AdminDelete(c.Request.Context(), id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}
