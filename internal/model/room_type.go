package model

// RoomType 房型，对应 room_types，(dorm_id, room_name) 唯一
type RoomType struct {
	ID           int64    `gorm:"column:id;primaryKey"  json:"id"`
	DormID       int64    `gorm:"column:dorm_id"        json:"dorm_id"`
	RoomName     string   `gorm:"column:room_name"      json:"room_name"`
	MonthlyPrice *float64 `gorm:"column:monthly_price"  json:"monthly_price"`
	DailyPrice   *float64 `gorm:"column:daily_price"    json:"daily_price"`
	SummerPrice  *float64 `gorm:"column:summer_price"   json:"summer_price"`
	MaxOccupancy *int     `gorm:"column:max_occupancy"  json:"max_occupancy"`
	IsAvailable  bool     `gorm:"column:is_available"   json:"is_available"`
}

func (RoomType) TableName() string { return "room_types" }
