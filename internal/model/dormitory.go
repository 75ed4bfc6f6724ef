package model

// Dormitory 宿舍表，对应 dormitories
type Dormitory struct {
	ID              int64    `gorm:"column:id;primaryKey"      json:"id"`
	DormName        string   `gorm:"column:dorm_name"          json:"dorm_name"`
	Address         string   `gorm:"column:address"            json:"address"`
	ZoneID          int64    `gorm:"column:zone_id"            json:"zone_id"`
	Description     *string  `gorm:"column:description"        json:"description,omitempty"`
	Latitude        *float64 `gorm:"column:latitude"           json:"latitude,omitempty"`
	Longitude       *float64 `gorm:"column:longitude"          json:"longitude,omitempty"`
	ApprovalStatus  string   `gorm:"column:approval_status"    json:"approval_status"` // pending | approved | rejected
	RejectionReason *string  `gorm:"column:rejection_reason"   json:"rejection_reason,omitempty"`
	MinPrice        *float64 `gorm:"column:min_price"          json:"min_price"` // 由房型价格派生
	MaxPrice        *float64 `gorm:"column:max_price"          json:"max_price"`
	OwnerID         int64    `gorm:"column:owner_id"           json:"owner_id"`
	ContactID       *int64   `gorm:"column:contact_id"         json:"contact_id,omitempty"`
	Timestamps
}

func (Dormitory) TableName() string { return "dormitories" }

// IsApproved 是否已通过审核
func (d *Dormitory) IsApproved() bool { return d.ApprovalStatus == ApprovalApproved }

// DormitoryListItem 列表视图：附带区域名、主图与评分汇总
type DormitoryListItem struct {
	Dormitory
	ZoneName        string   `gorm:"column:zone_name"         json:"zone_name"`
	PrimaryImageURL *string  `gorm:"column:primary_image_url" json:"primary_image_url,omitempty"`
	AverageRating   *float64 `gorm:"column:average_rating"    json:"average_rating"`
	ReviewCount     int64    `gorm:"column:review_count"      json:"review_count"`
}

// Zone 区域字典，对应 zones
type Zone struct {
	ID       int64  `gorm:"column:id;primaryKey" json:"id"`
	ZoneName string `gorm:"column:zone_name"     json:"zone_name"`
}

func (Zone) TableName() string { return "zones" }

// ContactInfo 联系方式，对应 contact_info
type ContactInfo struct {
	ID      int64   `gorm:"column:id;primaryKey" json:"id"`
	Phone   *string `gorm:"column:phone"         json:"phone,omitempty"`
	LineID  *string `gorm:"column:line_id"       json:"line_id,omitempty"`
	Email   *string `gorm:"column:email"         json:"email,omitempty"`
	Website *string `gorm:"column:website"       json:"website,omitempty"`
}

func (ContactInfo) TableName() string { return "contact_info" }

// Amenity 设施字典，对应 amenities
type Amenity struct {
	ID          int64  `gorm:"column:id;primaryKey" json:"id"`
	AmenityName string `gorm:"column:amenity_name"  json:"amenity_name"`
}

func (Amenity) TableName() string { return "amenities" }

// DormitoryAmenity 宿舍设施关联，对应 dormitory_amenities
// 编辑时先整体置为不可用，再把提交的集合重新置为可用（软移除）
type DormitoryAmenity struct {
	DormID       int64  `gorm:"column:dorm_id;primaryKey"    json:"dorm_id"`
	AmenityID    int64  `gorm:"column:amenity_id;primaryKey" json:"amenity_id"`
	LocationType string `gorm:"column:location_type"         json:"location_type"` // indoor | outdoor
	IsAvailable  bool   `gorm:"column:is_available"          json:"is_available"`

	AmenityName string `gorm:"column:amenity_name;->" json:"amenity_name,omitempty"`
}

func (DormitoryAmenity) TableName() string { return "dormitory_amenities" }
