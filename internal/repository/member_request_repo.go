package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// MemberRequestRepository 入住申请数据访问接口
type MemberRequestRepository interface {
	GetPending(ctx context.Context, userID, dormID int64) (*model.MemberRequest, error)
	Create(ctx context.Context, req *model.MemberRequest) error
	GetByID(ctx context.Context, id int64) (*model.MemberRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]model.MemberRequest, error)
	// ListByDorm status 为空时返回全部
	ListByDorm(ctx context.Context, dormID int64, status string) ([]model.MemberRequest, error)
	// CancelPendingByUser 取消用户所有 pending 申请（exceptID 除外），返回取消条数
	CancelPendingByUser(ctx context.Context, userID, exceptID int64, at time.Time) (int64, error)
	// CancelApproved 将用户对某宿舍已批准的历史申请置为 cancelled
	CancelApproved(ctx context.Context, userID, dormID int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status string, at time.Time) error
}

type memberRequestRepo struct {
	db *gorm.DB
}

// NewMemberRequestRepo 创建 MemberRequestRepository 实例
func NewMemberRequestRepo(db *gorm.DB) MemberRequestRepository {
	return &memberRequestRepo{db: db}
}

const memberRequestSelect = `
	SELECT mr.id, mr.user_id, mr.dorm_id, mr.request_date, mr.status, mr.responded_at,
		d.dorm_name, u.username
	FROM member_requests mr
	JOIN dormitories d ON d.id = mr.dorm_id
	JOIN users u ON u.id = mr.user_id`

func (r *memberRequestRepo) GetPending(ctx context.Context, userID, dormID int64) (*model.MemberRequest, error) {
	return scanOne[model.MemberRequest](ctx, r.db,
		memberRequestSelect+" WHERE mr.user_id = ? AND mr.dorm_id = ? AND mr.status = ?",
		userID, dormID, model.RequestPending)
}

func (r *memberRequestRepo) Create(ctx context.Context, req *model.MemberRequest) error {
	if req.Status == "" {
		req.Status = model.RequestPending
	}
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO member_requests (user_id, dorm_id, status)
		VALUES (?, ?, ?)
		RETURNING id, request_date`,
		req.UserID, req.DormID, req.Status,
	).Row().Scan(&req.ID, &req.RequestDate)
}

func (r *memberRequestRepo) GetByID(ctx context.Context, id int64) (*model.MemberRequest, error) {
	return scanOne[model.MemberRequest](ctx, r.db, memberRequestSelect+" WHERE mr.id = ?", id)
}

func (r *memberRequestRepo) ListByUser(ctx context.Context, userID int64) ([]model.MemberRequest, error) {
	return scanAll[model.MemberRequest](ctx, r.db,
		memberRequestSelect+" WHERE mr.user_id = ? ORDER BY mr.request_date DESC, mr.id DESC", userID)
}

func (r *memberRequestRepo) ListByDorm(ctx context.Context, dormID int64, status string) ([]model.MemberRequest, error) {
	if status == "" {
		return scanAll[model.MemberRequest](ctx, r.db,
			memberRequestSelect+" WHERE mr.dorm_id = ? ORDER BY mr.request_date DESC, mr.id DESC", dormID)
	}
	return scanAll[model.MemberRequest](ctx, r.db,
		memberRequestSelect+" WHERE mr.dorm_id = ? AND mr.status = ? ORDER BY mr.request_date DESC, mr.id DESC",
		dormID, status)
}

func (r *memberRequestRepo) CancelPendingByUser(ctx context.Context, userID, exceptID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		"UPDATE member_requests SET status = ?, responded_at = ? WHERE user_id = ? AND status = ? AND id <> ?",
		model.RequestCancelled, at, userID, model.RequestPending, exceptID,
	)
	return res.RowsAffected, res.Error
}

func (r *memberRequestRepo) CancelApproved(ctx context.Context, userID, dormID int64, at time.Time) error {
	return r.db.WithContext(ctx).Exec(
		"UPDATE member_requests SET status = ?, responded_at = ? WHERE user_id = ? AND dorm_id = ? AND status = ?",
		model.RequestCancelled, at, userID, dormID, model.RequestApproved,
	).Error
}

func (r *memberRequestRepo) UpdateStatus(ctx context.Context, id int64, status string, at time.Time) error {
	return affected(r.db.WithContext(ctx).Exec(
		"UPDATE member_requests SET status = ?, responded_at = ? WHERE id = ?", status, at, id,
	))
}
