package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/dto"
	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// UserHandler 用户资料 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
	errs    *errorResponder
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, errs *errorResponder) *UserHandler {
	return &UserHandler{userSvc: userSvc, errs: errs}
}

// UpdateProfile 部分更新资料，请求体为逻辑字段名到新值的映射
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.errs.bindError(c, err)
		return
	}

	user, err := h.userSvc.UpdateProfile(c.Request.Context(), userID, fields)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, user)
}

// UploadAvatar 上传头像（multipart 字段 file）
// POST /api/v1/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.errs.bindError(c, err)
		return
	}
	data, err := readFormFile(fh)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	user, err := h.userSvc.UploadAvatar(c.Request.Context(), userID, data)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, user)
}

// CheckUsername 用户名可用性，已登录时排除自身
// GET /api/v1/users/username-available?username=xxx
func (h *UserHandler) CheckUsername(c *gin.Context) {
	var req dto.UsernameCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.bindError(c, err)
		return
	}

	var excludeID int64
	if user := OptionalUser(c); user != nil {
		excludeID = user.ID
	}

	available, err := h.userSvc.UsernameAvailable(c.Request.Context(), req.Username, excludeID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	response.OK(c, dto.UsernameCheckResponse{Username: req.Username, Available: available})
}
