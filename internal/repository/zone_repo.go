package repository

import (
	"context"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// ZoneRepository 区域字典数据访问接口
type ZoneRepository interface {
	List(ctx context.Context) ([]model.Zone, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type zoneRepo struct {
	db *gorm.DB
}

// NewZoneRepo 创建 ZoneRepository 实例
func NewZoneRepo(db *gorm.DB) ZoneRepository {
	return &zoneRepo{db: db}
}

func (r *zoneRepo) List(ctx context.Context) ([]model.Zone, error) {
	return scanAll[model.Zone](ctx, r.db, "SELECT id, zone_name FROM zones ORDER BY id")
}

func (r *zoneRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw("SELECT EXISTS (SELECT 1 FROM zones WHERE id = ?)", id).Scan(&exists).Error
	return exists, err
}
