package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// DormitoryFieldColumns 房东编辑宿舍允许的标量字段
var DormitoryFieldColumns = FieldTable{
	"dormName":    "dorm_name",
	"address":     "address",
	"zoneId":      "zone_id",
	"description": "description",
	"latitude":    "latitude",
	"longitude":   "longitude",
}

// DormitoryFilter 公开列表筛选条件
type DormitoryFilter struct {
	ZoneID   *int64
	MinPrice *float64
	MaxPrice *float64
	Keyword  string
}

// DormitoryRepository 宿舍数据访问接口
type DormitoryRepository interface {
	Create(ctx context.Context, dorm *model.Dormitory) error
	GetByID(ctx context.Context, id int64) (*model.Dormitory, error)
	LockByID(ctx context.Context, id int64) (*model.Dormitory, error)
	ListApproved(ctx context.Context, f DormitoryFilter, offset, limit int) ([]model.DormitoryListItem, int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.DormitoryListItem, error)
	// ListByStatus status 为空时返回全部
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]model.DormitoryListItem, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	SetApproval(ctx context.Context, id int64, status string, reason *string) error
	// RefreshPriceRange 按当前可用房型的月租重算 min/max，无有效价格时均置 NULL
	RefreshPriceRange(ctx context.Context, id int64) error
	GetContactID(ctx context.Context, id int64) (*int64, error)
	SetContactID(ctx context.Context, id int64, contactID *int64) error
	// Delete 返回受影响行数，由调用方判断目标是否仍存在
	Delete(ctx context.Context, id int64) (int64, error)
}

type dormitoryRepo struct {
	db *gorm.DB
}

// NewDormitoryRepo 创建 DormitoryRepository 实例
func NewDormitoryRepo(db *gorm.DB) DormitoryRepository {
	return &dormitoryRepo{db: db}
}

const dormitoryColumns = `id, dorm_name, address, zone_id, description, latitude, longitude,
	approval_status, rejection_reason, min_price, max_price, owner_id, contact_id, created_at, updated_at`

// listItemSelect 列表视图：主图取"主图优先、最新优先"的第一张
const listItemSelect = `
	SELECT d.id, d.dorm_name, d.address, d.zone_id, d.description, d.latitude, d.longitude,
		d.approval_status, d.rejection_reason, d.min_price, d.max_price, d.owner_id, d.contact_id,
		d.created_at, d.updated_at, z.zone_name,
		(SELECT i.image_url FROM dormitory_images i WHERE i.dorm_id = d.id
			ORDER BY i.is_primary DESC, i.upload_date DESC, i.id DESC LIMIT 1) AS primary_image_url,
		(SELECT AVG(rv.rating)::float8 FROM reviews rv WHERE rv.dorm_id = d.id) AS average_rating,
		(SELECT COUNT(*) FROM reviews rv WHERE rv.dorm_id = d.id) AS review_count
	FROM dormitories d
	JOIN zones z ON z.id = d.zone_id`

func (r *dormitoryRepo) Create(ctx context.Context, dorm *model.Dormitory) error {
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO dormitories (dorm_name, address, zone_id, description, latitude, longitude,
			approval_status, owner_id, contact_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		dorm.DormName, dorm.Address, dorm.ZoneID, dorm.Description, dorm.Latitude, dorm.Longitude,
		dorm.ApprovalStatus, dorm.OwnerID, dorm.ContactID,
	).Row().Scan(&dorm.ID, &dorm.CreatedAt, &dorm.UpdatedAt)
}

func (r *dormitoryRepo) GetByID(ctx context.Context, id int64) (*model.Dormitory, error) {
	return scanOne[model.Dormitory](ctx, r.db, "SELECT "+dormitoryColumns+" FROM dormitories WHERE id = ?", id)
}

func (r *dormitoryRepo) LockByID(ctx context.Context, id int64) (*model.Dormitory, error) {
	return scanOne[model.Dormitory](ctx, r.db, "SELECT "+dormitoryColumns+" FROM dormitories WHERE id = ? FOR UPDATE", id)
}

func (r *dormitoryRepo) ListApproved(ctx context.Context, f DormitoryFilter, offset, limit int) ([]model.DormitoryListItem, int64, error) {
	conds := []string{"d.approval_status = ?"}
	args := []interface{}{model.ApprovalApproved}

	if f.ZoneID != nil {
		conds = append(conds, "d.zone_id = ?")
		args = append(args, *f.ZoneID)
	}
	// 价格区间与筛选区间有交集即命中
	if f.MinPrice != nil {
		conds = append(conds, "d.max_price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "d.min_price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		conds = append(conds, "(d.dorm_name ILIKE ? OR d.address ILIKE ?)")
		like := "%" + kw + "%"
		args = append(args, like, like)
	}

	return r.page(ctx, " WHERE "+strings.Join(conds, " AND "), args, offset, limit)
}

func (r *dormitoryRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.DormitoryListItem, error) {
	return scanAll[model.DormitoryListItem](ctx, r.db,
		listItemSelect+" WHERE d.owner_id = ? ORDER BY d.created_at DESC, d.id DESC", ownerID)
}

func (r *dormitoryRepo) ListByStatus(ctx context.Context, status string, offset, limit int) ([]model.DormitoryListItem, int64, error) {
	if status == "" {
		return r.page(ctx, "", nil, offset, limit)
	}
	return r.page(ctx, " WHERE d.approval_status = ?", []interface{}{status}, offset, limit)
}

func (r *dormitoryRepo) page(ctx context.Context, where string, args []interface{}, offset, limit int) ([]model.DormitoryListItem, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM dormitories d"+where, args...).
		Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	pageArgs := append(append([]interface{}{}, args...), limit, offset)
	items, err := scanAll[model.DormitoryListItem](ctx, r.db,
		listItemSelect+where+" ORDER BY d.created_at DESC, d.id DESC LIMIT ? OFFSET ?", pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *dormitoryRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "dormitories", DormitoryFieldColumns, id, fields)
}

func (r *dormitoryRepo) SetApproval(ctx context.Context, id int64, status string, reason *string) error {
	return affected(r.db.WithContext(ctx).Exec(
		"UPDATE dormitories SET approval_status = ?, rejection_reason = ?, updated_at = NOW() WHERE id = ?",
		status, reason, id,
	))
}

func (r *dormitoryRepo) RefreshPriceRange(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Exec(`
		UPDATE dormitories d
		SET min_price = p.min_price, max_price = p.max_price, updated_at = NOW()
		FROM (
			SELECT MIN(monthly_price) AS min_price, MAX(monthly_price) AS max_price
			FROM room_types
			WHERE dorm_id = ? AND is_available AND monthly_price IS NOT NULL
		) p
		WHERE d.id = ?`, id, id,
	))
}

func (r *dormitoryRepo) GetContactID(ctx context.Context, id int64) (*int64, error) {
	row, err := scanOne[struct {
		ContactID *int64 `gorm:"column:contact_id"`
	}](ctx, r.db, "SELECT contact_id FROM dormitories WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return row.ContactID, nil
}

func (r *dormitoryRepo) SetContactID(ctx context.Context, id int64, contactID *int64) error {
	return affected(r.db.WithContext(ctx).Exec(
		"UPDATE dormitories SET contact_id = ?, updated_at = NOW() WHERE id = ?", contactID, id,
	))
}

func (r *dormitoryRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Exec("DELETE FROM dormitories WHERE id = ?", id)
	return res.RowsAffected, res.Error
}
