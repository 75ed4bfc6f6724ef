package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormhub/internal/dto"
	"dormhub/internal/model"
	"dormhub/internal/repository"
	"dormhub/pkg/jwt"
)

// AuthService 认证与建档业务接口
// 身份由外部身份提供方校验，这里只负责把身份映射到本地用户
type AuthService interface {
	// Register 首次注册：同一身份重复注册返回冲突
	Register(ctx context.Context, identity *jwt.Identity, req *dto.ProfileRequest) (*model.User, error)
	// CompleteProfile 完善 / 覆盖资料：不存在则新建，存在则原地更新
	CompleteProfile(ctx context.Context, identity *jwt.Identity, req *dto.ProfileRequest) (*model.User, error)
	// ResolveUser 按身份查找本地用户，未建档返回 ErrNotRegistered
	ResolveUser(ctx context.Context, uid string) (*model.User, error)
	Me(ctx context.Context, identity *jwt.Identity) (*dto.MeResponse, error)
	// RevokeSessions 吊销用户所有在途身份令牌（管理员）
	RevokeSessions(ctx context.Context, userID int64) (*dto.RevokeSessionsResponse, error)
}

type authService struct {
	repo    *repository.Repository
	revoker SessionRevoker
	logger  *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, revoker SessionRevoker, logger *zap.Logger) AuthService {
	return &authService{repo: repo, revoker: revoker, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Register 注册 + 入住申请
// ═══════════════════════════════════════════════════════════
//
// 步骤：身份未注册 → 插入用户（仅写入匹配角色的字段）
//       → 住户且指定宿舍时幂等创建 pending 申请 → 提交

func (s *authService) Register(ctx context.Context, identity *jwt.Identity, req *dto.ProfileRequest) (*model.User, error) {
	payload := req.Payload()
	if err := validateProfile(&payload); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(identity.Email)
	if email == "" {
		return nil, ErrProfileInvalid.WithMessage("身份信息缺少邮箱")
	}

	user := &model.User{FirebaseUID: identity.UID, Email: email}
	if identity.Picture != "" {
		picture := identity.Picture
		user.ProfileImageURL = &picture
	}
	applyProfile(user, &payload)

	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.User.GetByFirebaseUID(ctx, identity.UID); err == nil {
			return ErrAlreadyRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		taken, err := tx.User.UsernameTaken(ctx, user.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}

		if dormID := requestedDorm(&payload); dormID != nil {
			if _, err := requireApprovedDormitory(ctx, tx, *dormID); err != nil {
				return err
			}
			if _, _, err := ensurePendingRequest(ctx, tx, user.ID, *dormID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, s.classifyUserConflict(ctx, identity.UID)
		}
		return nil, logUnexpected(s.logger, "注册失败", err, zap.String("uid", identity.UID))
	}

	s.logger.Info("用户注册成功",
		zap.Int64("user_id", user.ID),
		zap.String("member_type", user.MemberType),
	)
	return user, nil
}

// classifyUserConflict 并发注册撞上唯一约束时区分是身份重复还是用户名重复
func (s *authService) classifyUserConflict(ctx context.Context, uid string) error {
	if _, err := s.repo.User.GetByFirebaseUID(ctx, uid); err == nil {
		return ErrAlreadyRegistered
	}
	return ErrUsernameTaken
}

// ═══════════════════════════════════════════════════════════
// CompleteProfile 完善资料 + 入住申请
// ═══════════════════════════════════════════════════════════

func (s *authService) CompleteProfile(ctx context.Context, identity *jwt.Identity, req *dto.ProfileRequest) (*model.User, error) {
	payload := req.Payload()
	if err := validateProfile(&payload); err != nil {
		return nil, err
	}

	var user *model.User
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.User.GetByFirebaseUID(ctx, identity.UID)
		switch {
		case err == nil:
			// 锁定后再改，避免与并发的迁移 / 审批交错
			if existing, err = tx.User.LockByID(ctx, existing.ID); err != nil {
				return err
			}
			// 管理员只更新基础资料，角色保持不变
			if existing.IsAdmin() {
				payload.MemberType = model.MemberTypeAdmin
				payload.Member, payload.Owner = nil, nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing = nil
		default:
			return err
		}

		var excludeID int64
		if existing != nil {
			excludeID = existing.ID
		}
		taken, err := tx.User.UsernameTaken(ctx, payload.Username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		if existing == nil {
			email := strings.TrimSpace(identity.Email)
			if email == "" {
				return ErrProfileInvalid.WithMessage("身份信息缺少邮箱")
			}
			user = &model.User{FirebaseUID: identity.UID, Email: email}
			applyProfile(user, &payload)
			if err := tx.User.Create(ctx, user); err != nil {
				return err
			}
		} else {
			user = existing
			wasMember := user.IsMember()
			priorResidence := user.ResidenceDormID
			applyProfile(user, &payload)
			if err := tx.User.UpdateProfile(ctx, user); err != nil {
				return err
			}
			// 不再是住户：撤销 pending 申请与原宿舍的 approved 记录，结束当前居住记录
			if wasMember && !user.IsMember() {
				now := timeNow()
				if _, err := tx.MemberRequest.CancelPendingByUser(ctx, user.ID, 0, now); err != nil {
					return err
				}
				if priorResidence != nil {
					if err := tx.MemberRequest.CancelApproved(ctx, user.ID, *priorResidence, now); err != nil {
						return err
					}
				}
				if err := endStay(ctx, tx, user.ID, now); err != nil {
					return err
				}
			}
		}

		if dormID := requestedDorm(&payload); dormID != nil && !sameDorm(user.ResidenceDormID, *dormID) {
			if _, err := requireApprovedDormitory(ctx, tx, *dormID); err != nil {
				return err
			}
			if _, _, err := ensurePendingRequest(ctx, tx, user.ID, *dormID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, logUnexpected(s.logger, "完善资料失败", err, zap.String("uid", identity.UID))
	}

	return user, nil
}

// ═══════════════════════════════════════════════════════════
// 查询
// ═══════════════════════════════════════════════════════════

func (s *authService) ResolveUser(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.repo.User.GetByFirebaseUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotRegistered
		}
		s.logger.Error("查询用户失败", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, identity *jwt.Identity) (*dto.MeResponse, error) {
	resp := &dto.MeResponse{
		Identity: &dto.IdentityResponse{
			UID:     identity.UID,
			Email:   identity.Email,
			Name:    identity.Name,
			Picture: identity.Picture,
		},
	}

	user, err := s.repo.User.GetByFirebaseUID(ctx, identity.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		s.logger.Error("查询用户失败", zap.String("uid", identity.UID), zap.Error(err))
		return nil, err
	}
	resp.User = user
	resp.Registered = true

	if user.IsMember() {
		stay, err := s.repo.Stay.GetCurrent(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询当前居住记录失败", zap.Int64("user_id", user.ID), zap.Error(err))
			return nil, err
		}
		resp.CurrentStay = stay

		requests, err := s.repo.MemberRequest.ListByUser(ctx, user.ID)
		if err != nil {
			s.logger.Error("查询入住申请失败", zap.Int64("user_id", user.ID), zap.Error(err))
			return nil, err
		}
		for _, r := range requests {
			if r.Status == model.RequestPending {
				resp.PendingCount++
			}
		}
	}
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// RevokeSessions 吊销会话
// ═══════════════════════════════════════════════════════════

func (s *authService) RevokeSessions(ctx context.Context, userID int64) (*dto.RevokeSessionsResponse, error) {
	if s.revoker == nil {
		return nil, ErrRevocationUnavailable
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	at := timeNow()
	if err := s.revoker.RevokeSessions(ctx, user.FirebaseUID, at); err != nil {
		s.logger.Error("写入吊销标记失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, ErrRevocationUnavailable.Wrap(err)
	}

	s.logger.Info("已吊销用户会话", zap.Int64("user_id", userID))
	return &dto.RevokeSessionsResponse{UserID: userID, RevokedAt: at.Format(time.RFC3339)}, nil
}

func sameDorm(current *int64, dormID int64) bool {
	return current != nil && *current == dormID
}
