package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// MembershipService 入住申请与居住记录业务接口
type MembershipService interface {
	// Request 幂等创建 pending 申请，created 为 false 表示返回的是已有申请
	Request(ctx context.Context, userID, dormID int64) (req *model.MemberRequest, created bool, err error)
	ListMine(ctx context.Context, userID int64) ([]model.MemberRequest, error)
	Cancel(ctx context.Context, userID, requestID int64) error

	ListForOwner(ctx context.Context, ownerID, dormID int64, status string) ([]model.MemberRequest, error)
	// Approve 批准申请：设置住户宿舍、撤销其他 pending 申请、切换居住记录，单事务完成
	Approve(ctx context.Context, ownerID, requestID int64) error
	Reject(ctx context.Context, ownerID, requestID int64) error

	// MoveDormitory 更换宿舍：撤销旧申请与旧宿舍关系、发起新申请、切换居住记录，单事务完成
	MoveDormitory(ctx context.Context, userID, dormID int64) (*model.MemberRequest, error)
	ListStays(ctx context.Context, userID int64) ([]model.Stay, error)
}

type membershipService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMembershipService 创建 MembershipService 实例
func NewMembershipService(repo *repository.Repository, logger *zap.Logger) MembershipService {
	return &membershipService{repo: repo, logger: logger}
}

// ────────────────────── 住户侧 ──────────────────────

func (s *membershipService) Request(ctx context.Context, userID, dormID int64) (*model.MemberRequest, bool, error) {
	var (
		req     *model.MemberRequest
		created bool
	)
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.User.GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if !user.IsMember() {
			return ErrMemberOnly
		}
		if sameDorm(user.ResidenceDormID, dormID) {
			return ErrAlreadyResident
		}
		if _, err := requireApprovedDormitory(ctx, tx, dormID); err != nil {
			return err
		}
		req, created, err = ensurePendingRequest(ctx, tx, userID, dormID)
		return err
	})
	if err != nil {
		// 并发的重复提交撞上部分唯一索引，等价于已存在
		if repository.IsUniqueViolation(err) {
			existing, getErr := s.repo.MemberRequest.GetPending(ctx, userID, dormID)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, logUnexpected(s.logger, "创建入住申请失败", err,
			zap.Int64("user_id", userID), zap.Int64("dorm_id", dormID))
	}
	return req, created, nil
}

func (s *membershipService) ListMine(ctx context.Context, userID int64) ([]model.MemberRequest, error) {
	list, err := s.repo.MemberRequest.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询入住申请失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *membershipService) Cancel(ctx context.Context, userID, requestID int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		req, err := tx.MemberRequest.GetByID(ctx, requestID)
		if err != nil {
			return notFoundAs(err, ErrRequestNotFound)
		}
		if req.UserID != userID {
			return ErrRequestForbidden
		}
		if req.Status != model.RequestPending {
			return ErrRequestNotPending
		}
		now := timeNow()
		if err := tx.MemberRequest.UpdateStatus(ctx, requestID, model.RequestCancelled, now); err != nil {
			return err
		}
		return endProvisionalStay(ctx, tx, req.UserID, req.DormID, now)
	})
	if err != nil {
		return logUnexpected(s.logger, "撤销入住申请失败", err, zap.Int64("request_id", requestID))
	}
	return nil
}

// ────────────────────── 房东侧 ──────────────────────

func (s *membershipService) ListForOwner(ctx context.Context, ownerID, dormID int64, status string) ([]model.MemberRequest, error) {
	dorm, err := s.repo.Dormitory.GetByID(ctx, dormID)
	if err != nil {
		return nil, logUnexpected(s.logger, "查询宿舍失败", notFoundAs(err, ErrDormitoryNotFound), zap.Int64("dorm_id", dormID))
	}
	if dorm.OwnerID != ownerID {
		return nil, ErrDormitoryForbidden
	}

	list, err := s.repo.MemberRequest.ListByDorm(ctx, dormID, status)
	if err != nil {
		s.logger.Error("查询宿舍入住申请失败", zap.Int64("dorm_id", dormID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

// loadOwnedPending 事务内加载申请并校验房东归属与 pending 状态
func loadOwnedPending(ctx context.Context, tx *repository.Repository, ownerID, requestID int64) (*model.MemberRequest, *model.Dormitory, error) {
	req, err := tx.MemberRequest.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, notFoundAs(err, ErrRequestNotFound)
	}
	dorm, err := authorizeOwner(ctx, tx, req.DormID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if req.Status != model.RequestPending {
		return nil, nil, ErrRequestNotPending
	}
	return req, dorm, nil
}

// ═══════════════════════════════════════════════════════════
// Approve 批准入住
// ═══════════════════════════════════════════════════════════
//
// 步骤：校验归属与状态 → 锁定申请人 → 申请置 approved
//       → 撤销申请人其他 pending → 旧宿舍的 approved 记录置 cancelled
//       → 设置 residence_dorm_id → 当前居住记录不是该宿舍时切换 → 提交

func (s *membershipService) Approve(ctx context.Context, ownerID, requestID int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		req, dorm, err := loadOwnedPending(ctx, tx, ownerID, requestID)
		if err != nil {
			return err
		}
		if !dorm.IsApproved() {
			return ErrDormitoryNotApproved
		}

		applicant, err := tx.User.LockByID(ctx, req.UserID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if !applicant.IsMember() {
			return ErrMemberOnly
		}

		now := timeNow()
		if err := tx.MemberRequest.UpdateStatus(ctx, req.ID, model.RequestApproved, now); err != nil {
			return err
		}
		if _, err := tx.MemberRequest.CancelPendingByUser(ctx, applicant.ID, req.ID, now); err != nil {
			return err
		}
		if prior := applicant.ResidenceDormID; prior != nil && *prior != req.DormID {
			if err := tx.MemberRequest.CancelApproved(ctx, applicant.ID, *prior, now); err != nil {
				return err
			}
		}
		if err := tx.User.SetResidence(ctx, applicant.ID, &req.DormID); err != nil {
			return err
		}

		current, err := tx.Stay.GetCurrent(ctx, applicant.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if current != nil && current.DormID == req.DormID {
			return nil
		}
		return rolloverStay(ctx, tx, applicant.ID, req.DormID, now)
	})
	if err != nil {
		return logUnexpected(s.logger, "批准入住申请失败", err, zap.Int64("request_id", requestID))
	}

	s.logger.Info("入住申请已批准", zap.Int64("request_id", requestID), zap.Int64("owner_id", ownerID))
	return nil
}

func (s *membershipService) Reject(ctx context.Context, ownerID, requestID int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		req, _, err := loadOwnedPending(ctx, tx, ownerID, requestID)
		if err != nil {
			return err
		}
		now := timeNow()
		if err := tx.MemberRequest.UpdateStatus(ctx, req.ID, model.RequestRejected, now); err != nil {
			return err
		}
		// 更换宿舍时已切换的居住记录随申请一起失效
		return endProvisionalStay(ctx, tx, req.UserID, req.DormID, now)
	})
	if err != nil {
		return logUnexpected(s.logger, "驳回入住申请失败", err, zap.Int64("request_id", requestID))
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// MoveDormitory 更换宿舍
// ═══════════════════════════════════════════════════════════
//
// 步骤：锁定用户并校验角色 → 目标宿舍存在且已审核 → 撤销全部 pending
//       → 旧宿舍 approved 记录置 cancelled 并清空 residence_dorm_id
//       → 新建 pending 申请 → 居住记录切换（同一事务） → 提交

func (s *membershipService) MoveDormitory(ctx context.Context, userID, dormID int64) (*model.MemberRequest, error) {
	var req *model.MemberRequest
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.User.LockByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if !user.IsMember() {
			return ErrMemberOnly
		}
		if _, err := requireApprovedDormitory(ctx, tx, dormID); err != nil {
			return err
		}
		if sameDorm(user.ResidenceDormID, dormID) {
			return ErrAlreadyResident
		}

		now := timeNow()
		if _, err := tx.MemberRequest.CancelPendingByUser(ctx, userID, 0, now); err != nil {
			return err
		}
		if prior := user.ResidenceDormID; prior != nil {
			if err := tx.MemberRequest.CancelApproved(ctx, userID, *prior, now); err != nil {
				return err
			}
			if err := tx.User.SetResidence(ctx, userID, nil); err != nil {
				return err
			}
		}

		if req, _, err = ensurePendingRequest(ctx, tx, userID, dormID); err != nil {
			return err
		}
		return rolloverStay(ctx, tx, userID, dormID, now)
	})
	if err != nil {
		return nil, logUnexpected(s.logger, "更换宿舍失败", err,
			zap.Int64("user_id", userID), zap.Int64("dorm_id", dormID))
	}

	s.logger.Info("用户更换宿舍", zap.Int64("user_id", userID), zap.Int64("dorm_id", dormID))
	return req, nil
}

func (s *membershipService) ListStays(ctx context.Context, userID int64) ([]model.Stay, error) {
	stays, err := s.repo.Stay.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询居住记录失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return stays, nil
}
