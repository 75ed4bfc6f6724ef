package repository

import (
	"context"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// ImageRepository 宿舍图片数据访问接口
type ImageRepository interface {
	// ListByDorm 主图优先，其次按上传时间倒序
	ListByDorm(ctx context.Context, dormID int64) ([]model.DormitoryImage, error)
	GetByID(ctx context.Context, id int64) (*model.DormitoryImage, error)
	Create(ctx context.Context, img *model.DormitoryImage) error
	Delete(ctx context.Context, id int64) error
	ClearPrimary(ctx context.Context, dormID int64) error
	SetPrimary(ctx context.Context, id int64) error
	DeleteByDorm(ctx context.Context, dormID int64) error
}

type imageRepo struct {
	db *gorm.DB
}

// NewImageRepo 创建 ImageRepository 实例
func NewImageRepo(db *gorm.DB) ImageRepository {
	return &imageRepo{db: db}
}

const imageColumns = `id, dorm_id, image_url, image_type, is_primary, upload_date`

func (r *imageRepo) ListByDorm(ctx context.Context, dormID int64) ([]model.DormitoryImage, error) {
	return scanAll[model.DormitoryImage](ctx, r.db,
		"SELECT "+imageColumns+" FROM dormitory_images WHERE dorm_id = ? ORDER BY is_primary DESC, upload_date DESC, id DESC",
		dormID)
}

func (r *imageRepo) GetByID(ctx context.Context, id int64) (*model.DormitoryImage, error) {
	return scanOne[model.DormitoryImage](ctx, r.db, "SELECT "+imageColumns+" FROM dormitory_images WHERE id = ?", id)
}

func (r *imageRepo) Create(ctx context.Context, img *model.DormitoryImage) error {
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO dormitory_images (dorm_id, image_url, image_type, is_primary)
		VALUES (?, ?, ?, ?)
		RETURNING id, upload_date`,
		img.DormID, img.ImageURL, img.ImageType, img.IsPrimary,
	).Row().Scan(&img.ID, &img.UploadDate)
}

func (r *imageRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Exec("DELETE FROM dormitory_images WHERE id = ?", id))
}

func (r *imageRepo) ClearPrimary(ctx context.Context, dormID int64) error {
	return r.db.WithContext(ctx).
		Exec("UPDATE dormitory_images SET is_primary = FALSE WHERE dorm_id = ? AND is_primary", dormID).Error
}

func (r *imageRepo) SetPrimary(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Exec("UPDATE dormitory_images SET is_primary = TRUE WHERE id = ?", id))
}

func (r *imageRepo) DeleteByDorm(ctx context.Context, dormID int64) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM dormitory_images WHERE dorm_id = ?", dormID).Error
}
