package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/dto"
	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// AuthHandler 认证与建档 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	errs    *errorResponder
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, errs *errorResponder) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, errs: errs}
}

// Register 首次注册（住户可同时提交入住申请）
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), identity, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.Created(c, user)
}

// CompleteProfile 完善或覆盖资料
// PUT /api/v1/auth/profile
func (h *AuthHandler) CompleteProfile(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	user, err := h.authSvc.CompleteProfile(c.Request.Context(), identity, &req)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, user)
}

// Me 当前身份与建档状态
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	me, err := h.authSvc.Me(c.Request.Context(), identity)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, me)
}

// RevokeSessions 吊销指定用户的全部会话（管理员）
// POST /api/v1/admin/users/:id/revoke-sessions
func (h *AuthHandler) RevokeSessions(c *gin.Context) {
	userID, ok := MustParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.authSvc.RevokeSessions(c.Request.Context(), userID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, result)
}
