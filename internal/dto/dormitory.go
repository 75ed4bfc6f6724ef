package dto

import "dormhub/internal/model"

// ── 宿舍模块 DTO ──

// ContactPayload 联系方式
type ContactPayload struct {
	Phone   *string `json:"phone"   binding:"omitempty,max=20"`
	LineID  *string `json:"line_id" binding:"omitempty,max=50"`
	Email   *string `json:"email"   binding:"omitempty,email"`
	Website *string `json:"website" binding:"omitempty,url"`
}

// AmenityPayload 宿舍设施
type AmenityPayload struct {
	AmenityID    int64  `json:"amenity_id"    binding:"required,min=1"`
	LocationType string `json:"location_type" binding:"omitempty,oneof=indoor outdoor"`
}

// RoomTypePayload 房型
type RoomTypePayload struct {
	RoomName     string   `json:"room_name"     binding:"required,max=100"`
	MonthlyPrice *float64 `json:"monthly_price" binding:"omitempty,min=0"`
	DailyPrice   *float64 `json:"daily_price"   binding:"omitempty,min=0"`
	SummerPrice  *float64 `json:"summer_price"  binding:"omitempty,min=0"`
	MaxOccupancy *int     `json:"max_occupancy" binding:"omitempty,min=1"`
	// IsAvailable 仅单独修改房型时生效，编辑宿舍时提交的房型一律可用
	IsAvailable *bool `json:"is_available"`
}

// CreateDormitoryRequest 创建宿舍请求
type CreateDormitoryRequest struct {
	DormName    string            `json:"dorm_name"   binding:"required,max=200"`
	Address     string            `json:"address"     binding:"required"`
	ZoneID      int64             `json:"zone_id"     binding:"required,min=1"`
	Description *string           `json:"description"`
	Latitude    *float64          `json:"latitude"    binding:"omitempty,latitude"`
	Longitude   *float64          `json:"longitude"   binding:"omitempty,longitude"`
	Contact     *ContactPayload   `json:"contact"`
	Amenities   []AmenityPayload  `json:"amenities"   binding:"omitempty,dive"`
	RoomTypes   []RoomTypePayload `json:"room_types"  binding:"omitempty,dive"`
}

// UpdateDormitoryRequest 房东编辑宿舍请求
// Fields 为逻辑字段名（dormName、zoneId 等）到新值的映射；
// Amenities / RoomTypes 为 nil 表示不修改，空数组表示全部置为不可用
type UpdateDormitoryRequest struct {
	Fields    map[string]interface{} `json:"fields"`
	Contact   *ContactPayload        `json:"contact"`
	Amenities []AmenityPayload       `json:"amenities"  binding:"omitempty,dive"`
	RoomTypes []RoomTypePayload      `json:"room_types" binding:"omitempty,dive"`
}

// DormitoryListRequest 公开列表查询参数
type DormitoryListRequest struct {
	PaginationRequest
	ZoneID   *int64   `form:"zone_id"   binding:"omitempty,min=1"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,min=0"`
	Keyword  string   `form:"keyword"   binding:"omitempty,max=100"`
}

// AdminDormitoryListRequest 管理员按审核状态查询
type AdminDormitoryListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// RejectDormitoryRequest 驳回宿舍请求
type RejectDormitoryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// DormitoryDetailResponse 宿舍详情
type DormitoryDetailResponse struct {
	model.Dormitory
	Contact   *model.ContactInfo       `json:"contact,omitempty"`
	RoomTypes []model.RoomType         `json:"room_types"`
	Images    []model.DormitoryImage   `json:"images"`
	Amenities []model.DormitoryAmenity `json:"amenities"`
	Rating    model.RatingSummary      `json:"rating"`
}

// ImageUploadResponse 图片上传结果
type ImageUploadResponse struct {
	Images []model.DormitoryImage `json:"images"`
}

// ReferenceDataResponse 区域与设施字典
type ReferenceDataResponse struct {
	Zones     []model.Zone    `json:"zones,omitempty"`
	Amenities []model.Amenity `json:"amenities,omitempty"`
}
