package repository

import (
	"context"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// ReviewRepository 评价数据访问接口
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	GetByUserAndDorm(ctx context.Context, userID, dormID int64) (*model.Review, error)
	ListByDorm(ctx context.Context, dormID int64, offset, limit int) ([]model.Review, int64, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, dormID int64) (*model.RatingSummary, error)
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

const reviewSelect = `
	SELECT rv.id, rv.user_id, rv.dorm_id, rv.rating, rv.comment, rv.created_at, rv.updated_at, u.username
	FROM reviews rv
	JOIN users u ON u.id = rv.user_id`

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO reviews (user_id, dorm_id, rating, comment)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		review.UserID, review.DormID, review.Rating, review.Comment,
	).Row().Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

func (r *reviewRepo) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	return scanOne[model.Review](ctx, r.db, reviewSelect+" WHERE rv.id = ?", id)
}

func (r *reviewRepo) GetByUserAndDorm(ctx context.Context, userID, dormID int64) (*model.Review, error) {
	return scanOne[model.Review](ctx, r.db, reviewSelect+" WHERE rv.user_id = ? AND rv.dorm_id = ?", userID, dormID)
}

func (r *reviewRepo) ListByDorm(ctx context.Context, dormID int64, offset, limit int) ([]model.Review, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM reviews WHERE dorm_id = ?", dormID).
		Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	reviews, err := scanAll[model.Review](ctx, r.db,
		reviewSelect+" WHERE rv.dorm_id = ? ORDER BY rv.created_at DESC, rv.id DESC LIMIT ? OFFSET ?",
		dormID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepo) Update(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Raw(
		"UPDATE reviews SET rating = ?, comment = ?, updated_at = NOW() WHERE id = ? RETURNING updated_at",
		review.Rating, review.Comment, review.ID,
	).Row().Scan(&review.UpdatedAt)
}

func (r *reviewRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Exec("DELETE FROM reviews WHERE id = ?", id))
}

func (r *reviewRepo) Summary(ctx context.Context, dormID int64) (*model.RatingSummary, error) {
	var s model.RatingSummary
	err := r.db.WithContext(ctx).
		Raw("SELECT AVG(rating)::float8 AS average_rating, COUNT(*) AS review_count FROM reviews WHERE dorm_id = ?", dormID).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
