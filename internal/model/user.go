package model

// User 用户表，对应 users
type User struct {
	ID              int64   `gorm:"column:id;primaryKey"                        json:"id"`
	FirebaseUID     string  `gorm:"column:firebase_uid;type:varchar(128);unique" json:"-"`
	Username        string  `gorm:"column:username;type:varchar(30);unique"     json:"username"`
	Email           string  `gorm:"column:email"                                json:"email"`
	FirstName       string  `gorm:"column:first_name"                           json:"first_name"`
	LastName        string  `gorm:"column:last_name"                            json:"last_name"`
	PhoneNumber     *string `gorm:"column:phone_number"                         json:"phone_number,omitempty"`
	ProfileImageURL *string `gorm:"column:profile_image_url"                    json:"profile_image_url,omitempty"`
	MemberType      string  `gorm:"column:member_type"                          json:"member_type"` // member | owner | admin

	// 仅 member
	University *string `gorm:"column:university" json:"university,omitempty"`
	StudentID  *string `gorm:"column:student_id" json:"student_id,omitempty"`

	// 仅 owner
	BusinessName  *string `gorm:"column:business_name"  json:"business_name,omitempty"`
	BusinessPhone *string `gorm:"column:business_phone" json:"business_phone,omitempty"`

	// 入住申请被批准后才会设置
	ResidenceDormID *int64 `gorm:"column:residence_dorm_id" json:"residence_dorm_id,omitempty"`
	Timestamps
}

func (User) TableName() string { return "users" }

// IsMember 是否为住户角色
func (u *User) IsMember() bool { return u.MemberType == MemberTypeMember }

// IsOwner 是否为房东角色
func (u *User) IsOwner() bool { return u.MemberType == MemberTypeOwner }

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool { return u.MemberType == MemberTypeAdmin }
