package dto

// ── 认证模块 DTO ──

// ProfileRequest 注册 / 完善资料请求
// 角色字段按 member_type 取用，另一角色的字段会被忽略
type ProfileRequest struct {
	Username    string  `json:"username"     binding:"required,min=3,max=30"`
	FirstName   string  `json:"first_name"   binding:"required,max=100"`
	LastName    string  `json:"last_name"    binding:"required,max=100"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
	MemberType  string  `json:"member_type"  binding:"required,oneof=member owner"`

	University *string `json:"university" binding:"omitempty,max=200"`
	StudentID  *string `json:"student_id" binding:"omitempty,max=30"`
	DormID     *int64  `json:"dorm_id"    binding:"omitempty,min=1"`

	BusinessName  *string `json:"business_name"  binding:"omitempty,max=200"`
	BusinessPhone *string `json:"business_phone" binding:"omitempty,max=20"`
}

// MemberProfile 住户专属字段
type MemberProfile struct {
	University string
	StudentID  *string
	// DormID 希望入住的宿舍，提交后生成 pending 申请
	DormID *int64
}

// OwnerProfile 房东专属字段
type OwnerProfile struct {
	BusinessName  *string
	BusinessPhone string
}

// ProfilePayload 按角色区分的资料载荷，Member / Owner 至多一个非空
type ProfilePayload struct {
	Username    string
	FirstName   string
	LastName    string
	PhoneNumber *string
	MemberType  string

	Member *MemberProfile
	Owner  *OwnerProfile
}

// Payload 转换为按角色区分的载荷
func (r *ProfileRequest) Payload() ProfilePayload {
	p := ProfilePayload{
		Username:    r.Username,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		MemberType:  r.MemberType,
	}
	switch r.MemberType {
	case "member":
		m := &MemberProfile{StudentID: r.StudentID, DormID: r.DormID}
		if r.University != nil {
			m.University = *r.University
		}
		p.Member = m
	case "owner":
		o := &OwnerProfile{BusinessName: r.BusinessName}
		if r.BusinessPhone != nil {
			o.BusinessPhone = *r.BusinessPhone
		}
		p.Owner = o
	}
	return p
}

// RevokeSessionsResponse 吊销会话响应
type RevokeSessionsResponse struct {
	UserID    int64  `json:"user_id"`
	RevokedAt string `json:"revoked_at"`
}
