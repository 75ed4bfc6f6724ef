package repository

import (
	"context"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// ContactRepository 联系方式数据访问接口
type ContactRepository interface {
	Create(ctx context.Context, c *model.ContactInfo) error
	GetByID(ctx context.Context, id int64) (*model.ContactInfo, error)
	Update(ctx context.Context, c *model.ContactInfo) error
	// DeleteUnreferenced 仅当没有宿舍引用该联系方式时删除，返回是否删除
	DeleteUnreferenced(ctx context.Context, id int64) (bool, error)
}

type contactRepo struct {
	db *gorm.DB
}

// NewContactRepo 创建 ContactRepository 实例
func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, c *model.ContactInfo) error {
	return r.db.WithContext(ctx).Raw(
		"INSERT INTO contact_info (phone, line_id, email, website) VALUES (?, ?, ?, ?) RETURNING id",
		c.Phone, c.LineID, c.Email, c.Website,
	).Row().Scan(&c.ID)
}

func (r *contactRepo) GetByID(ctx context.Context, id int64) (*model.ContactInfo, error) {
	return scanOne[model.ContactInfo](ctx, r.db,
		"SELECT id, phone, line_id, email, website FROM contact_info WHERE id = ?", id)
}

func (r *contactRepo) Update(ctx context.Context, c *model.ContactInfo) error {
	return affected(r.db.WithContext(ctx).Exec(
		"UPDATE contact_info SET phone = ?, line_id = ?, email = ?, website = ? WHERE id = ?",
		c.Phone, c.LineID, c.Email, c.Website, c.ID,
	))
}

func (r *contactRepo) DeleteUnreferenced(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM contact_info c
		WHERE c.id = ? AND NOT EXISTS (SELECT 1 FROM dormitories d WHERE d.contact_id = c.id)`, id)
	return res.RowsAffected > 0, res.Error
}
