package model

// Review 评价，对应 reviews，(user_id, dorm_id) 唯一
type Review struct {
	ID      int64  `gorm:"column:id;primaryKey" json:"id"`
	UserID  int64  `gorm:"column:user_id"       json:"user_id"`
	DormID  int64  `gorm:"column:dorm_id"       json:"dorm_id"`
	Rating  int    `gorm:"column:rating"        json:"rating"`
	Comment string `gorm:"column:comment"       json:"comment"`
	Timestamps

	Username string `gorm:"column:username;->" json:"username,omitempty"`
}

func (Review) TableName() string { return "reviews" }

// RatingSummary 宿舍评分汇总
type RatingSummary struct {
	AverageRating *float64 `gorm:"column:average_rating" json:"average_rating"`
	ReviewCount   int64    `gorm:"column:review_count"   json:"review_count"`
}
