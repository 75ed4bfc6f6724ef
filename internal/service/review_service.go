package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormhub/internal/dto"
	"dormhub/internal/model"
	"dormhub/internal/repository"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewService 宿舍评价业务接口
//
// 只有当前住在该宿舍的 member 可以评价，每人每宿舍一条；
// 写入后在同一事务内重算评分汇总并随结果返回
type ReviewService interface {
	Create(ctx context.Context, userID, dormID int64, req *dto.ReviewRequest) (*dto.ReviewResult, error)
	List(ctx context.Context, dormID int64, page *dto.PaginationRequest) (*dto.ReviewListResponse, int64, error)
	Update(ctx context.Context, userID, reviewID int64, req *dto.ReviewRequest) (*dto.ReviewResult, error)
	// Delete 作者或管理员可删除
	Delete(ctx context.Context, caller *model.User, reviewID int64) (*model.RatingSummary, error)
}

type reviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, logger: logger}
}

// validateReview 校验评分与评论，返回去除首尾空白的评论
func validateReview(req *dto.ReviewRequest) (string, error) {
	if req.Rating < minRating || req.Rating > maxRating {
		return "", ErrReviewInvalidScore
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return "", ErrReviewEmptyComment
	}
	return comment, nil
}

func (s *reviewService) Create(ctx context.Context, userID, dormID int64, req *dto.ReviewRequest) (*dto.ReviewResult, error) {
	comment, err := validateReview(req)
	if err != nil {
		return nil, err
	}

	var result *dto.ReviewResult
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.User.GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, ErrUserNotFound)
		}
		if _, err := requireApprovedDormitory(ctx, tx, dormID); err != nil {
			return err
		}
		if !user.IsMember() || !sameDorm(user.ResidenceDormID, dormID) {
			return ErrReviewNotEligible
		}

		_, err = tx.Review.GetByUserAndDorm(ctx, userID, dormID)
		if err == nil {
			return ErrReviewDuplicate
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		review := &model.Review{UserID: userID, DormID: dormID, Rating: req.Rating, Comment: comment}
		if err := tx.Review.Create(ctx, review); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrReviewDuplicate
			}
			return err
		}
		review.Username = user.Username

		summary, err := tx.Review.Summary(ctx, dormID)
		if err != nil {
			return err
		}
		result = &dto.ReviewResult{Review: review, Rating: *summary}
		return nil
	})
	if err != nil {
		return nil, logUnexpected(s.logger, "创建评价失败", err,
			zap.Int64("user_id", userID), zap.Int64("dorm_id", dormID))
	}
	return result, nil
}

func (s *reviewService) List(ctx context.Context, dormID int64, page *dto.PaginationRequest) (*dto.ReviewListResponse, int64, error) {
	if _, err := requireApprovedDormitory(ctx, s.repo, dormID); err != nil {
		// 未审核宿舍的评价对外不可见
		if errors.Is(err, ErrDormitoryNotApproved) {
			return nil, 0, ErrDormitoryNotFound
		}
		return nil, 0, logUnexpected(s.logger, "查询宿舍失败", err, zap.Int64("dorm_id", dormID))
	}

	reviews, total, err := s.repo.Review.ListByDorm(ctx, dormID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询评价列表失败", zap.Int64("dorm_id", dormID), zap.Error(err))
		return nil, 0, err
	}
	summary, err := s.repo.Review.Summary(ctx, dormID)
	if err != nil {
		s.logger.Error("查询评分汇总失败", zap.Int64("dorm_id", dormID), zap.Error(err))
		return nil, 0, err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return &dto.ReviewListResponse{Reviews: reviews, Rating: *summary}, total, nil
}

func (s *reviewService) Update(ctx context.Context, userID, reviewID int64, req *dto.ReviewRequest) (*dto.ReviewResult, error) {
	comment, err := validateReview(req)
	if err != nil {
		return nil, err
	}

	var result *dto.ReviewResult
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		review, err := tx.Review.GetByID(ctx, reviewID)
		if err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		if review.UserID != userID {
			return ErrReviewForbidden
		}

		review.Rating = req.Rating
		review.Comment = comment
		if err := tx.Review.Update(ctx, review); err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}

		summary, err := tx.Review.Summary(ctx, review.DormID)
		if err != nil {
			return err
		}
		result = &dto.ReviewResult{Review: review, Rating: *summary}
		return nil
	})
	if err != nil {
		return nil, logUnexpected(s.logger, "修改评价失败", err, zap.Int64("review_id", reviewID))
	}
	return result, nil
}

func (s *reviewService) Delete(ctx context.Context, caller *model.User, reviewID int64) (*model.RatingSummary, error) {
	var summary *model.RatingSummary
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		review, err := tx.Review.GetByID(ctx, reviewID)
		if err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		if review.UserID != caller.ID && !caller.IsAdmin() {
			return ErrReviewForbidden
		}
		if err := tx.Review.Delete(ctx, reviewID); err != nil {
			return notFoundAs(err, ErrReviewNotFound)
		}
		summary, err = tx.Review.Summary(ctx, review.DormID)
		return err
	})
	if err != nil {
		return nil, logUnexpected(s.logger, "删除评价失败", err, zap.Int64("review_id", reviewID))
	}
	return summary, nil
}
