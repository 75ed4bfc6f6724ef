package model

import "time"

// Timestamps 通用审计字段
type Timestamps struct {
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// 账号角色
const (
	MemberTypeMember = "member"
	MemberTypeOwner  = "owner"
	MemberTypeAdmin  = "admin"
)

// ValidMemberType 角色是否在固定集合内
func ValidMemberType(t string) bool {
	switch t {
	case MemberTypeMember, MemberTypeOwner, MemberTypeAdmin:
		return true
	}
	return false
}

// 宿舍审核状态
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// 入住申请状态
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestCancelled = "cancelled"
)
