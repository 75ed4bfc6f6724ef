package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormhub/internal/dto"
	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// RoomTypeService 房型业务接口
// 每次增删改都在同一事务内刷新宿舍价格区间
type RoomTypeService interface {
	List(ctx context.Context, dormID int64) ([]model.RoomType, error)
	Create(ctx context.Context, ownerID, dormID int64, req *dto.RoomTypePayload) (*model.RoomType, error)
	Update(ctx context.Context, ownerID, roomTypeID int64, req *dto.RoomTypePayload) (*model.RoomType, error)
	Delete(ctx context.Context, ownerID, roomTypeID int64) error
}

type roomTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRoomTypeService 创建 RoomTypeService 实例
func NewRoomTypeService(repo *repository.Repository, logger *zap.Logger) RoomTypeService {
	return &roomTypeService{repo: repo, logger: logger}
}

func (s *roomTypeService) List(ctx context.Context, dormID int64) ([]model.RoomType, error) {
	if _, err := requireApprovedDormitory(ctx, s.repo, dormID); err != nil {
		if errors.Is(err, ErrDormitoryNotApproved) {
			return nil, ErrDormitoryNotFound
		}
		return nil, logUnexpected(s.logger, "查询宿舍失败", err, zap.Int64("dorm_id", dormID))
	}
	list, err := s.repo.RoomType.ListByDorm(ctx, dormID, true)
	if err != nil {
		s.logger.Error("查询房型失败", zap.Int64("dorm_id", dormID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *roomTypeService) Create(ctx context.Context, ownerID, dormID int64, req *dto.RoomTypePayload) (*model.RoomType, error) {
	rt, err := toRoomType(*req)
	if err != nil {
		return nil, err
	}
	rt.DormID = dormID

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if _, err := authorizeOwner(ctx, tx, dormID, ownerID); err != nil {
			return err
		}
		if err := tx.RoomType.Create(ctx, rt); err != nil {
			return err
		}
		return tx.Dormitory.RefreshPriceRange(ctx, dormID)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrRoomTypeDuplicate
		}
		return nil, logUnexpected(s.logger, "创建房型失败", err, zap.Int64("dorm_id", dormID))
	}
	return rt, nil
}

func (s *roomTypeService) Update(ctx context.Context, ownerID, roomTypeID int64, req *dto.RoomTypePayload) (*model.RoomType, error) {
	patch, err := toRoomType(*req)
	if err != nil {
		return nil, err
	}

	var updated *model.RoomType
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		rt, err := tx.RoomType.GetByID(ctx, roomTypeID)
		if err != nil {
			return notFoundAs(err, ErrRoomTypeNotFound)
		}
		if _, err := authorizeOwner(ctx, tx, rt.DormID, ownerID); err != nil {
			return err
		}

		patch.ID = rt.ID
		patch.DormID = rt.DormID
		if err := tx.RoomType.Update(ctx, patch); err != nil {
			return notFoundAs(err, ErrRoomTypeNotFound)
		}
		updated = patch
		return tx.Dormitory.RefreshPriceRange(ctx, rt.DormID)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrRoomTypeDuplicate
		}
		return nil, logUnexpected(s.logger, "修改房型失败", err, zap.Int64("room_type_id", roomTypeID))
	}
	return updated, nil
}

func (s *roomTypeService) Delete(ctx context.Context, ownerID, roomTypeID int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		rt, err := tx.RoomType.GetByID(ctx, roomTypeID)
		if err != nil {
			return notFoundAs(err, ErrRoomTypeNotFound)
		}
		if _, err := authorizeOwner(ctx, tx, rt.DormID, ownerID); err != nil {
			return err
		}
		if err := tx.RoomType.Delete(ctx, roomTypeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomTypeNotFound
			}
			return err
		}
		return tx.Dormitory.RefreshPriceRange(ctx, rt.DormID)
	})
	if err != nil {
		return logUnexpected(s.logger, "删除房型失败", err, zap.Int64("room_type_id", roomTypeID))
	}
	return nil
}
