package dto

// ── 入住申请 / 居住记录 DTO ──

// MemberRequestCreateRequest 发起入住申请
type MemberRequestCreateRequest struct {
	DormID int64 `json:"dorm_id" binding:"required,min=1"`
}

// MoveDormitoryRequest 更换宿舍
type MoveDormitoryRequest struct {
	DormID int64 `json:"dorm_id" binding:"required,min=1"`
}

// OwnerRequestListRequest 房东查看申请
type OwnerRequestListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
}
