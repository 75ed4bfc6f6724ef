package model

import (
	"time"

	"gorm.io/datatypes"
)

// MemberRequest 入住申请，对应 member_requests
// 同一用户对同一宿舍至多一条 pending
type MemberRequest struct {
	ID          int64      `gorm:"column:id;primaryKey"  json:"id"`
	UserID      int64      `gorm:"column:user_id"        json:"user_id"`
	DormID      int64      `gorm:"column:dorm_id"        json:"dorm_id"`
	RequestDate time.Time  `gorm:"column:request_date"   json:"request_date"`
	Status      string     `gorm:"column:status"         json:"status"` // pending | approved | rejected | cancelled
	RespondedAt *time.Time `gorm:"column:responded_at"   json:"responded_at,omitempty"`

	// 列表查询关联字段
	DormName string `gorm:"column:dorm_name;->" json:"dorm_name,omitempty"`
	Username string `gorm:"column:username;->"  json:"username,omitempty"`
}

func (MemberRequest) TableName() string { return "member_requests" }

// Stay 居住记录，对应 stays
// 每个用户至多一条 is_current = true
type Stay struct {
	ID        int64           `gorm:"column:id;primaryKey" json:"id"`
	UserID    int64           `gorm:"column:user_id"       json:"user_id"`
	DormID    int64           `gorm:"column:dorm_id"       json:"dorm_id"`
	StartDate datatypes.Date  `gorm:"column:start_date"    json:"start_date"`
	EndDate   *datatypes.Date `gorm:"column:end_date"      json:"end_date"`
	IsCurrent bool            `gorm:"column:is_current"    json:"is_current"`

	DormName string `gorm:"column:dorm_name;->" json:"dorm_name,omitempty"`
}

func (Stay) TableName() string { return "stays" }
