package repository

import (
	"context"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// AmenityRepository 设施字典与宿舍设施关联数据访问接口
type AmenityRepository interface {
	AvailabilityPolicy
	List(ctx context.Context) ([]model.Amenity, error)
	// ExistingIDs 返回 ids 中在字典里存在的部分
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListByDorm(ctx context.Context, dormID int64, onlyAvailable bool) ([]model.DormitoryAmenity, error)
	// Upsert 按 (dorm_id, amenity_id) 插入或更新，并置为可用
	Upsert(ctx context.Context, da *model.DormitoryAmenity) error
	DeleteByDorm(ctx context.Context, dormID int64) error
}

type amenityRepo struct {
	db *gorm.DB
}

// NewAmenityRepo 创建 AmenityRepository 实例
func NewAmenityRepo(db *gorm.DB) AmenityRepository {
	return &amenityRepo{db: db}
}

func (r *amenityRepo) List(ctx context.Context) ([]model.Amenity, error) {
	return scanAll[model.Amenity](ctx, r.db, "SELECT id, amenity_name FROM amenities ORDER BY id")
}

func (r *amenityRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Raw("SELECT id FROM amenities WHERE id IN ?", ids).Scan(&out).Error
	return out, err
}

func (r *amenityRepo) ListByDorm(ctx context.Context, dormID int64, onlyAvailable bool) ([]model.DormitoryAmenity, error) {
	query := `
		SELECT da.dorm_id, da.amenity_id, da.location_type, da.is_available, a.amenity_name
		FROM dormitory_amenities da
		JOIN amenities a ON a.id = da.amenity_id
		WHERE da.dorm_id = ?`
	if onlyAvailable {
		query += " AND da.is_available"
	}
	return scanAll[model.DormitoryAmenity](ctx, r.db, query+" ORDER BY da.amenity_id", dormID)
}

func (r *amenityRepo) MarkAllUnavailable(ctx context.Context, dormID int64) error {
	return r.db.WithContext(ctx).
		Exec("UPDATE dormitory_amenities SET is_available = FALSE WHERE dorm_id = ?", dormID).Error
}

func (r *amenityRepo) Upsert(ctx context.Context, da *model.DormitoryAmenity) error {
	da.IsAvailable = true
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO dormitory_amenities (dorm_id, amenity_id, location_type, is_available)
		VALUES (?, ?, ?, TRUE)
		ON CONFLICT (dorm_id, amenity_id) DO UPDATE SET
			location_type = EXCLUDED.location_type,
			is_available  = TRUE`,
		da.DormID, da.AmenityID, da.LocationType,
	).Error
}

func (r *amenityRepo) DeleteByDorm(ctx context.Context, dormID int64) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM dormitory_amenities WHERE dorm_id = ?", dormID).Error
}
