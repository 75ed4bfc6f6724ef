package repository

import (
	"context"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// AvailabilityPolicy 软移除契约：
// 编辑时先 MarkAllUnavailable，再把提交的集合逐条 upsert 为可用；
// 未被重新提交的行保留但不可用，历史不删除
type AvailabilityPolicy interface {
	MarkAllUnavailable(ctx context.Context, dormID int64) error
}

// RoomTypeRepository 房型数据访问接口
// 任何写操作之后调用方必须在同一事务内执行 Dormitory.RefreshPriceRange
type RoomTypeRepository interface {
	AvailabilityPolicy
	ListByDorm(ctx context.Context, dormID int64, onlyAvailable bool) ([]model.RoomType, error)
	GetByID(ctx context.Context, id int64) (*model.RoomType, error)
	Create(ctx context.Context, rt *model.RoomType) error
	Update(ctx context.Context, rt *model.RoomType) error
	Delete(ctx context.Context, id int64) error
	// UpsertByName 按 (dorm_id, room_name) 插入或更新，并置为可用
	UpsertByName(ctx context.Context, rt *model.RoomType) error
	DeleteByDorm(ctx context.Context, dormID int64) error
}

type roomTypeRepo struct {
	db *gorm.DB
}

// NewRoomTypeRepo 创建 RoomTypeRepository 实例
func NewRoomTypeRepo(db *gorm.DB) RoomTypeRepository {
	return &roomTypeRepo{db: db}
}

const roomTypeColumns = `id, dorm_id, room_name, monthly_price, daily_price, summer_price, max_occupancy, is_available`

func (r *roomTypeRepo) ListByDorm(ctx context.Context, dormID int64, onlyAvailable bool) ([]model.RoomType, error) {
	query := "SELECT " + roomTypeColumns + " FROM room_types WHERE dorm_id = ?"
	if onlyAvailable {
		query += " AND is_available"
	}
	return scanAll[model.RoomType](ctx, r.db, query+" ORDER BY monthly_price NULLS LAST, id", dormID)
}

func (r *roomTypeRepo) GetByID(ctx context.Context, id int64) (*model.RoomType, error) {
	return scanOne[model.RoomType](ctx, r.db, "SELECT "+roomTypeColumns+" FROM room_types WHERE id = ?", id)
}

func (r *roomTypeRepo) Create(ctx context.Context, rt *model.RoomType) error {
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO room_types (dorm_id, room_name, monthly_price, daily_price, summer_price, max_occupancy, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		rt.DormID, rt.RoomName, rt.MonthlyPrice, rt.DailyPrice, rt.SummerPrice, rt.MaxOccupancy, rt.IsAvailable,
	).Row().Scan(&rt.ID)
}

func (r *roomTypeRepo) Update(ctx context.Context, rt *model.RoomType) error {
	return affected(r.db.WithContext(ctx).Exec(`
		UPDATE room_types SET room_name = ?, monthly_price = ?, daily_price = ?, summer_price = ?,
			max_occupancy = ?, is_available = ?
		WHERE id = ?`,
		rt.RoomName, rt.MonthlyPrice, rt.DailyPrice, rt.SummerPrice, rt.MaxOccupancy, rt.IsAvailable, rt.ID,
	))
}

func (r *roomTypeRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Exec("DELETE FROM room_types WHERE id = ?", id))
}

func (r *roomTypeRepo) MarkAllUnavailable(ctx context.Context, dormID int64) error {
	return r.db.WithContext(ctx).Exec("UPDATE room_types SET is_available = FALSE WHERE dorm_id = ?", dormID).Error
}

func (r *roomTypeRepo) UpsertByName(ctx context.Context, rt *model.RoomType) error {
	rt.IsAvailable = true
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO room_types (dorm_id, room_name, monthly_price, daily_price, summer_price, max_occupancy, is_available)
		VALUES (?, ?, ?, ?, ?, ?, TRUE)
		ON CONFLICT (dorm_id, room_name) DO UPDATE SET
			monthly_price = EXCLUDED.monthly_price,
			daily_price   = EXCLUDED.daily_price,
			summer_price  = EXCLUDED.summer_price,
			max_occupancy = EXCLUDED.max_occupancy,
			is_available  = TRUE
		RETURNING id`,
		rt.DormID, rt.RoomName, rt.MonthlyPrice, rt.DailyPrice, rt.SummerPrice, rt.MaxOccupancy,
	).Row().Scan(&rt.ID)
}

func (r *roomTypeRepo) DeleteByDorm(ctx context.Context, dormID int64) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM room_types WHERE dorm_id = ?", dormID).Error
}
