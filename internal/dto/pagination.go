package dto

// 宿舍卡片与评价列表按网格展示，默认一页 12 条
const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

// PaginationRequest 列表分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=48"`
}

// GetPage 页码，缺省为 1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 每页数量，缺省 DefaultPageSize，超过 MaxPageSize 时截断
// 服务层直接构造的请求不经过 binding 校验
func (p *PaginationRequest) GetPageSize() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	}
	return p.PageSize
}

func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
