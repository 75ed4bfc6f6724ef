package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/dto"
	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// ReviewHandler 评价 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
	errs      *errorResponder
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService, errs *errorResponder) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc, errs: errs}
}

// List 宿舍评价列表与评分汇总（公开）
// GET /api/v1/dormitories/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	dormID, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.errs.bindError(c, err)
		return
	}

	result, total, err := h.reviewSvc.List(c.Request.Context(), dormID, &page)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, gin.H{
		"list":       result.Reviews,
		"rating":     result.Rating,
		"pagination": response.NewPagination(total, page.GetPage(), page.GetPageSize()),
	})
}

// Create POST /api/v1/dormitories/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	dormID, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	result, err := h.reviewSvc.Create(c.Request.Context(), userID, dormID, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.Created(c, result)
}

// Update PUT /api/v1/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	result, err := h.reviewSvc.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 作者或管理员删除
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	caller, ok := MustGetUser(c)
	if !ok {
		return
	}
	id, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	summary, err := h.reviewSvc.Delete(c.Request.Context(), caller, id)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, gin.H{"rating": summary})
}
