package dto

import "dormhub/internal/model"

// ── 用户模块 DTO ──

// UsernameCheckRequest 用户名可用性查询
type UsernameCheckRequest struct {
	Username string `form:"username" binding:"required,min=3,max=30"`
}

// UsernameCheckResponse 用户名可用性
type UsernameCheckResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// MeResponse 当前用户信息（GET /auth/me）
type MeResponse struct {
	*model.User
	// Registered 身份已验证但尚未建档时为 false
	Registered   bool              `json:"registered"`
	CurrentStay  *model.Stay       `json:"current_stay,omitempty"`
	PendingCount int               `json:"pending_request_count"`
	Identity     *IdentityResponse `json:"identity,omitempty"`
}

// IdentityResponse 身份提供方返回的基本信息
type IdentityResponse struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}
