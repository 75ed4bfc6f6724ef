package dto

import "dormhub/internal/model"

// ── 评价模块 DTO ──

// ReviewRequest 创建 / 修改评价
// 取值范围在服务层校验，这里只要求字段存在
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ReviewResult 写入评价后的结果，附带重算后的评分汇总
type ReviewResult struct {
	Review *model.Review       `json:"review"`
	Rating model.RatingSummary `json:"rating"`
}

// ReviewListResponse 宿舍评价列表
type ReviewListResponse struct {
	Reviews []model.Review      `json:"reviews"`
	Rating  model.RatingSummary `json:"rating"`
}
