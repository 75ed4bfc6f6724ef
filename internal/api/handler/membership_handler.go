package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/dto"
	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// MembershipHandler 入住申请与居住记录 HTTP 处理器
type MembershipHandler struct {
	membershipSvc service.MembershipService
	errs          *errorResponder
}

// NewMembershipHandler 创建 MembershipHandler
func NewMembershipHandler(membershipSvc service.MembershipService, errs *errorResponder) *MembershipHandler {
	return &MembershipHandler{membershipSvc: membershipSvc, errs: errs}
}

// Request 发起入住申请；已有 pending 申请时原样返回（200），新建时 201
// POST /api/v1/member-requests
func (h *MembershipHandler) Request(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MemberRequestCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	result, created, err := h.membershipSvc.Request(c.Request.Context(), userID, req.DormID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	if created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// ListMine GET /api/v1/member-requests/me
func (h *MembershipHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requests, err := h.membershipSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": requests})
}

// Cancel 撤销自己的 pending 申请
// DELETE /api/v1/member-requests/:id
func (h *MembershipHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipSvc.Cancel(c.Request.Context(), userID, id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListForOwner 房东查看宿舍的入住申请
// GET /api/v1/owner/dormitories/:id/requests?status=pending
func (h *MembershipHandler) ListForOwner(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	dormID, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var req dto.OwnerRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	requests, err := h.membershipSvc.ListForOwner(c.Request.Context(), ownerID, dormID, req.Status)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": requests})
}

// Approve POST /api/v1/owner/member-requests/:id/approve
func (h *MembershipHandler) Approve(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipSvc.Approve(c.Request.Context(), ownerID, id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// Reject POST /api/v1/owner/member-requests/:id/reject
func (h *MembershipHandler) Reject(c *gin.Context) {
	ownerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipSvc.Reject(c.Request.Context(), ownerID, id); err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// Move 更换宿舍
// POST /api/v1/members/me/move
func (h *MembershipHandler) Move(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MoveDormitoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	result, err := h.membershipSvc.MoveDormitory(c.Request.Context(), userID, req.DormID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, result)
}

// ListStays 居住历史，当前记录在前
// GET /api/v1/members/me/stays
func (h *MembershipHandler) ListStays(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	stays, err := h.membershipSvc.ListStays(c.Request.Context(), userID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": stays})
}
