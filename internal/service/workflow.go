package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// 以下步骤均在调用方已开启的事务内执行，参数 tx 为事务绑定的 Repository

// ensurePendingRequest 幂等创建 pending 入住申请：同一 (用户, 宿舍) 已有 pending 时直接返回
func ensurePendingRequest(ctx context.Context, tx *repository.Repository, userID, dormID int64) (*model.MemberRequest, bool, error) {
	existing, err := tx.MemberRequest.GetPending(ctx, userID, dormID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	req := &model.MemberRequest{UserID: userID, DormID: dormID, Status: model.RequestPending}
	if err := tx.MemberRequest.Create(ctx, req); err != nil {
		return nil, false, err
	}
	return req, true, nil
}

// rolloverStay 关闭当前居住记录并开启新宿舍的当前记录
// 作为子步骤加入外层事务，失败时整个外层操作回滚
func rolloverStay(ctx context.Context, tx *repository.Repository, userID, dormID int64, at time.Time) error {
	return tx.InTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Stay.EndCurrent(ctx, userID, at); err != nil {
			return err
		}
		return tx.Stay.Create(ctx, &model.Stay{
			UserID:    userID,
			DormID:    dormID,
			StartDate: datatypes.Date(at),
			IsCurrent: true,
		})
	})
}

// endStay 仅关闭当前居住记录
func endStay(ctx context.Context, tx *repository.Repository, userID int64, at time.Time) error {
	_, err := tx.Stay.EndCurrent(ctx, userID, at)
	return err
}

// endProvisionalStay 申请被撤销或驳回后，若当前居住记录指向该宿舍而用户并未入住该宿舍，关闭该记录
func endProvisionalStay(ctx context.Context, tx *repository.Repository, userID, dormID int64, at time.Time) error {
	user, err := tx.User.LockByID(ctx, userID)
	if err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}
	if sameDorm(user.ResidenceDormID, dormID) {
		return nil
	}
	current, err := tx.Stay.GetCurrent(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if current.DormID != dormID {
		return nil
	}
	return endStay(ctx, tx, userID, at)
}

// requireApprovedDormitory 目标宿舍必须存在且已通过审核
func requireApprovedDormitory(ctx context.Context, repo *repository.Repository, dormID int64) (*model.Dormitory, error) {
	dorm, err := repo.Dormitory.GetByID(ctx, dormID)
	if err != nil {
		return nil, notFoundAs(err, ErrDormitoryNotFound)
	}
	if !dorm.IsApproved() {
		return nil, ErrDormitoryNotApproved
	}
	return dorm, nil
}

// authorizeOwner 锁定宿舍行并校验调用方是其房东
func authorizeOwner(ctx context.Context, tx *repository.Repository, dormID, userID int64) (*model.Dormitory, error) {
	dorm, err := tx.Dormitory.LockByID(ctx, dormID)
	if err != nil {
		return nil, notFoundAs(err, ErrDormitoryNotFound)
	}
	if dorm.OwnerID != userID {
		return nil, ErrDormitoryForbidden
	}
	return dorm, nil
}

// cascadeDeleteDormitory 删除宿舍及其子记录
// 顺序：图片 → 房型 → 设施 → 记下联系方式 id → 删除宿舍（0 行即不存在）→ 无其他引用时删除联系方式
// 入住申请、居住记录、评价由外键级联删除，住户的 residence_dorm_id 由外键置空
func cascadeDeleteDormitory(ctx context.Context, tx *repository.Repository, dormID int64) error {
	if err := tx.Image.DeleteByDorm(ctx, dormID); err != nil {
		return err
	}
	if err := tx.RoomType.DeleteByDorm(ctx, dormID); err != nil {
		return err
	}
	if err := tx.Amenity.DeleteByDorm(ctx, dormID); err != nil {
		return err
	}

	contactID, err := tx.Dormitory.GetContactID(ctx, dormID)
	if err != nil {
		return notFoundAs(err, ErrDormitoryNotFound)
	}

	n, err := tx.Dormitory.Delete(ctx, dormID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDormitoryNotFound
	}

	if contactID != nil {
		_, err = tx.Contact.DeleteUnreferenced(ctx, *contactID)
		return err
	}
	return nil
}

// reassertAmenities 软移除契约：先全部置为不可用，再把提交集合 upsert 为可用
func reassertAmenities(ctx context.Context, tx *repository.Repository, dormID int64, amenities []model.DormitoryAmenity) error {
	if err := tx.Amenity.MarkAllUnavailable(ctx, dormID); err != nil {
		return err
	}
	for i := range amenities {
		amenities[i].DormID = dormID
		if err := tx.Amenity.Upsert(ctx, &amenities[i]); err != nil {
			return err
		}
	}
	return nil
}

// reassertRoomTypes 同上，按 (dorm_id, room_name) upsert，并刷新价格区间
func reassertRoomTypes(ctx context.Context, tx *repository.Repository, dormID int64, roomTypes []model.RoomType) error {
	if err := tx.RoomType.MarkAllUnavailable(ctx, dormID); err != nil {
		return err
	}
	for i := range roomTypes {
		roomTypes[i].DormID = dormID
		if err := tx.RoomType.UpsertByName(ctx, &roomTypes[i]); err != nil {
			return err
		}
	}
	return tx.Dormitory.RefreshPriceRange(ctx, dormID)
}
