package model

import "time"

// 图片类型
const (
	ImageTypeGeneral  = "general"
	ImageTypeRoom     = "room"
	ImageTypeExterior = "exterior"
)

// DormitoryImage 宿舍图片，对应 dormitory_images
type DormitoryImage struct {
	ID         int64     `gorm:"column:id;primaryKey" json:"id"`
	DormID     int64     `gorm:"column:dorm_id"       json:"dorm_id"`
	ImageURL   string    `gorm:"column:image_url"     json:"image_url"`
	ImageType  string    `gorm:"column:image_type"    json:"image_type"`
	IsPrimary  bool      `gorm:"column:is_primary"    json:"is_primary"`
	UploadDate time.Time `gorm:"column:upload_date"   json:"upload_date"`
}

func (DormitoryImage) TableName() string { return "dormitory_images" }
