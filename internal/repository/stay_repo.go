package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dormhub/internal/model"
)

// StayRepository 居住记录数据访问接口
// 结束当前记录与开启新记录必须顺序执行，任意时刻每个用户至多一条当前记录
type StayRepository interface {
	GetCurrent(ctx context.Context, userID int64) (*model.Stay, error)
	// EndCurrent 关闭当前记录，返回关闭条数（0 或 1）
	EndCurrent(ctx context.Context, userID int64, endDate time.Time) (int64, error)
	Create(ctx context.Context, stay *model.Stay) error
	ListByUser(ctx context.Context, userID int64) ([]model.Stay, error)
}

type stayRepo struct {
	db *gorm.DB
}

// NewStayRepo 创建 StayRepository 实例
func NewStayRepo(db *gorm.DB) StayRepository {
	return &stayRepo{db: db}
}

const staySelect = `
	SELECT s.id, s.user_id, s.dorm_id, s.start_date, s.end_date, s.is_current, d.dorm_name
	FROM stays s
	JOIN dormitories d ON d.id = s.dorm_id`

func (r *stayRepo) GetCurrent(ctx context.Context, userID int64) (*model.Stay, error) {
	return scanOne[model.Stay](ctx, r.db, staySelect+" WHERE s.user_id = ? AND s.is_current", userID)
}

func (r *stayRepo) EndCurrent(ctx context.Context, userID int64, endDate time.Time) (int64, error) {
	// 同一天内多次迁移时 end_date 不得早于 start_date
	res := r.db.WithContext(ctx).Exec(
		"UPDATE stays SET is_current = FALSE, end_date = GREATEST(start_date, ?) WHERE user_id = ? AND is_current",
		datatypes.Date(endDate), userID,
	)
	return res.RowsAffected, res.Error
}

func (r *stayRepo) Create(ctx context.Context, stay *model.Stay) error {
	return r.db.WithContext(ctx).Raw(
		"INSERT INTO stays (user_id, dorm_id, start_date, end_date, is_current) VALUES (?, ?, ?, ?, ?) RETURNING id",
		stay.UserID, stay.DormID, stay.StartDate, stay.EndDate, stay.IsCurrent,
	).Row().Scan(&stay.ID)
}

func (r *stayRepo) ListByUser(ctx context.Context, userID int64) ([]model.Stay, error) {
	return scanAll[model.Stay](ctx, r.db,
		staySelect+" WHERE s.user_id = ? ORDER BY s.is_current DESC, s.start_date DESC, s.id DESC", userID)
}
