package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormhub/internal/dto"
	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// DormitoryService 宿舍业务接口
type DormitoryService interface {
	Create(ctx context.Context, ownerID int64, req *dto.CreateDormitoryRequest) (*dto.DormitoryDetailResponse, error)
	// Get viewer 为 nil 表示匿名访问；未审核宿舍仅房东本人与管理员可见
	Get(ctx context.Context, viewer *model.User, id int64) (*dto.DormitoryDetailResponse, error)
	ListApproved(ctx context.Context, req *dto.DormitoryListRequest) ([]model.DormitoryListItem, int64, error)
	ListMine(ctx context.Context, ownerID int64) ([]model.DormitoryListItem, error)
	ListByStatus(ctx context.Context, req *dto.AdminDormitoryListRequest) ([]model.DormitoryListItem, int64, error)
	// Update 房东编辑：标量字段 + 联系方式 + 设施 + 房型，单事务完成
	Update(ctx context.Context, ownerID, id int64, req *dto.UpdateDormitoryRequest) (*dto.DormitoryDetailResponse, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
	AdminDelete(ctx context.Context, id int64) error
	OwnerDelete(ctx context.Context, ownerID, id int64) error
}

type dormitoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDormitoryService 创建 DormitoryService 实例
func NewDormitoryService(repo *repository.Repository, logger *zap.Logger) DormitoryService {
	return &dormitoryService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *dormitoryService) Create(ctx context.Context, ownerID int64, req *dto.CreateDormitoryRequest) (*dto.DormitoryDetailResponse, error) {
	name := strings.TrimSpace(req.DormName)
	address := strings.TrimSpace(req.Address)
	if name == "" || address == "" {
		return nil, ErrDormitoryInvalid.WithMessage("宿舍名称和地址不能为空")
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	amenities, err := toAmenities(req.Amenities)
	if err != nil {
		return nil, err
	}
	roomTypes, err := toRoomTypes(req.RoomTypes)
	if err != nil {
		return nil, err
	}

	dorm := &model.Dormitory{
		DormName:       name,
		Address:        address,
		ZoneID:         req.ZoneID,
		Description:    trimOptional(req.Description),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		ApprovalStatus: model.ApprovalPending,
		OwnerID:        ownerID,
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := requireZone(ctx, tx, req.ZoneID); err != nil {
			return err
		}
		if err := requireAmenities(ctx, tx, amenities); err != nil {
			return err
		}

		if req.Contact != nil {
			contact := toContact(req.Contact)
			if err := tx.Contact.Create(ctx, contact); err != nil {
				return err
			}
			dorm.ContactID = &contact.ID
		}

		if err := tx.Dormitory.Create(ctx, dorm); err != nil {
			return err
		}

		for i := range amenities {
			amenities[i].DormID = dorm.ID
			if err := tx.Amenity.Upsert(ctx, &amenities[i]); err != nil {
				return err
			}
		}
		for i := range roomTypes {
			roomTypes[i].DormID = dorm.ID
			if err := tx.RoomType.UpsertByName(ctx, &roomTypes[i]); err != nil {
				return err
			}
		}
		return tx.Dormitory.RefreshPriceRange(ctx, dorm.ID)
	})
	if err != nil {
		return nil, logUnexpected(s.logger, "创建宿舍失败", err, zap.Int64("owner_id", ownerID))
	}

	s.logger.Info("宿舍已创建", zap.Int64("dorm_id", dorm.ID), zap.Int64("owner_id", ownerID))
	return s.detail(ctx, dorm.ID)
}

// ────────────────────── Query ──────────────────────

func (s *dormitoryService) Get(ctx context.Context, viewer *model.User, id int64) (*dto.DormitoryDetailResponse, error) {
	resp, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.IsApproved() {
		return resp, nil
	}
	if viewer != nil && (viewer.IsAdmin() || viewer.ID == resp.OwnerID) {
		return resp, nil
	}
	return nil, ErrDormitoryNotFound
}

func (s *dormitoryService) detail(ctx context.Context, id int64) (*dto.DormitoryDetailResponse, error) {
	dorm, err := s.repo.Dormitory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDormitoryNotFound
		}
		s.logger.Error("查询宿舍失败", zap.Int64("dorm_id", id), zap.Error(err))
		return nil, err
	}

	resp := &dto.DormitoryDetailResponse{Dormitory: *dorm}

	if dorm.ContactID != nil {
		contact, err := s.repo.Contact.GetByID(ctx, *dorm.ContactID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询联系方式失败", zap.Int64("dorm_id", id), zap.Error(err))
			return nil, err
		}
		resp.Contact = contact
	}

	if resp.RoomTypes, err = s.repo.RoomType.ListByDorm(ctx, id, true); err != nil {
		s.logger.Error("查询房型失败", zap.Int64("dorm_id", id), zap.Error(err))
		return nil, err
	}
	if resp.Images, err = s.repo.Image.ListByDorm(ctx, id); err != nil {
		s.logger.Error("查询图片失败", zap.Int64("dorm_id", id), zap.Error(err))
		return nil, err
	}
	if resp.Amenities, err = s.repo.Amenity.ListByDorm(ctx, id, true); err != nil {
		s.logger.Error("查询设施失败", zap.Int64("dorm_id", id), zap.Error(err))
		return nil, err
	}
	summary, err := s.repo.Review.Summary(ctx, id)
	if err != nil {
		s.logger.Error("查询评分失败", zap.Int64("dorm_id", id), zap.Error(err))
		return nil, err
	}
	resp.Rating = *summary

	return resp, nil
}

func (s *dormitoryService) ListApproved(ctx context.Context, req *dto.DormitoryListRequest) ([]model.DormitoryListItem, int64, error) {
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return nil, 0, ErrDormitoryInvalid.WithMessage("min_price 不能大于 max_price")
	}
	filter := repository.DormitoryFilter{
		ZoneID:   req.ZoneID,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Keyword:  req.Keyword,
	}
	items, total, err := s.repo.Dormitory.ListApproved(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询宿舍列表失败", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

func (s *dormitoryService) ListMine(ctx context.Context, ownerID int64) ([]model.DormitoryListItem, error) {
	items, err := s.repo.Dormitory.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("查询房东宿舍失败", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *dormitoryService) ListByStatus(ctx context.Context, req *dto.AdminDormitoryListRequest) ([]model.DormitoryListItem, int64, error) {
	items, total, err := s.repo.Dormitory.ListByStatus(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("按状态查询宿舍失败", zap.String("status", req.Status), zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}

// ═══════════════════════════════════════════════════════════
// Update 房东编辑宿舍
// ═══════════════════════════════════════════════════════════
//
// 步骤：锁定并鉴权 → 标量字段（字段映射表） → 联系方式
//       → 设施：全部置不可用后 upsert 提交集合 → 房型：同上并刷新价格区间 → 提交

func (s *dormitoryService) Update(ctx context.Context, ownerID, id int64, req *dto.UpdateDormitoryRequest) (*dto.DormitoryDetailResponse, error) {
	fields, err := normalizeDormitoryFields(req.Fields)
	if err != nil {
		return nil, err
	}

	var amenities []model.DormitoryAmenity
	if req.Amenities != nil {
		if amenities, err = toAmenities(req.Amenities); err != nil {
			return nil, err
		}
	}
	var roomTypes []model.RoomType
	if req.RoomTypes != nil {
		if roomTypes, err = toRoomTypes(req.RoomTypes); err != nil {
			return nil, err
		}
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		dorm, err := authorizeOwner(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}

		if len(fields) > 0 {
			if zoneID, ok := fields["zoneId"].(int64); ok {
				if err := requireZone(ctx, tx, zoneID); err != nil {
					return err
				}
			}
			if err := tx.Dormitory.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}

		if req.Contact != nil {
			contact := toContact(req.Contact)
			if dorm.ContactID != nil {
				contact.ID = *dorm.ContactID
				if err := tx.Contact.Update(ctx, contact); err != nil {
					return err
				}
			} else {
				if err := tx.Contact.Create(ctx, contact); err != nil {
					return err
				}
				if err := tx.Dormitory.SetContactID(ctx, id, &contact.ID); err != nil {
					return err
				}
			}
		}

		if req.Amenities != nil {
			if err := requireAmenities(ctx, tx, amenities); err != nil {
				return err
			}
			if err := reassertAmenities(ctx, tx, id, amenities); err != nil {
				return err
			}
		}

		if req.RoomTypes != nil {
			if err := reassertRoomTypes(ctx, tx, id, roomTypes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, logUnexpected(s.logger, "编辑宿舍失败", err, zap.Int64("dorm_id", id))
	}

	s.logger.Info("宿舍已更新", zap.Int64("dorm_id", id), zap.Int64("owner_id", ownerID))
	return s.detail(ctx, id)
}

// ────────────────────── Approval ──────────────────────

func (s *dormitoryService) Approve(ctx context.Context, id int64) error {
	if err := s.repo.Dormitory.SetApproval(ctx, id, model.ApprovalApproved, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDormitoryNotFound
		}
		s.logger.Error("审核宿舍失败", zap.Int64("dorm_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("宿舍审核通过", zap.Int64("dorm_id", id))
	return nil
}

func (s *dormitoryService) Reject(ctx context.Context, id int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrDormitoryInvalid.WithMessage("驳回原因不能为空")
	}
	if err := s.repo.Dormitory.SetApproval(ctx, id, model.ApprovalRejected, &reason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDormitoryNotFound
		}
		s.logger.Error("驳回宿舍失败", zap.Int64("dorm_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("宿舍已驳回", zap.Int64("dorm_id", id))
	return nil
}

// ═══════════════════════════════════════════════════════════
// Delete 级联删除
// ═══════════════════════════════════════════════════════════

func (s *dormitoryService) AdminDelete(ctx context.Context, id int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		return cascadeDeleteDormitory(ctx, tx, id)
	})
	if err != nil {
		return logUnexpected(s.logger, "删除宿舍失败", err, zap.Int64("dorm_id", id))
	}
	s.logger.Info("管理员删除宿舍", zap.Int64("dorm_id", id))
	return nil
}

func (s *dormitoryService) OwnerDelete(ctx context.Context, ownerID, id int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if _, err := authorizeOwner(ctx, tx, id, ownerID); err != nil {
			return err
		}
		return cascadeDeleteDormitory(ctx, tx, id)
	})
	if err != nil {
		return logUnexpected(s.logger, "删除宿舍失败", err, zap.Int64("dorm_id", id))
	}
	s.logger.Info("房东删除宿舍", zap.Int64("dorm_id", id), zap.Int64("owner_id", ownerID))
	return nil
}

// ────────────────────── 校验与转换 ──────────────────────

// normalizeDormitoryFields 校验逻辑字段与值类型，数字统一为 int64 / float64
func normalizeDormitoryFields(fields map[string]interface{}) (map[string]interface{}, error) {
	if _, _, err := repository.DormitoryFieldColumns.Resolve(fields); err != nil {
		return nil, ErrDormitoryInvalid.WithMessage("%v", err)
	}

	out := make(map[string]interface{}, len(fields))
	for key, raw := range fields {
		switch key {
		case "dormName", "address":
			v, ok := raw.(string)
			if !ok || strings.TrimSpace(v) == "" {
				return nil, ErrDormitoryInvalid.WithMessage("字段 %s 不能为空", key)
			}
			out[key] = strings.TrimSpace(v)
		case "description":
			switch v := raw.(type) {
			case nil:
				out[key] = nil
			case string:
				out[key] = trimOptional(&v)
			default:
				return nil, ErrDormitoryInvalid.WithMessage("字段 %s 必须为字符串", key)
			}
		case "zoneId":
			id, ok := toInt64(raw)
			if !ok || id <= 0 {
				return nil, ErrDormitoryInvalid.WithMessage("zoneId 无效")
			}
			out[key] = id
		case "latitude", "longitude":
			if raw == nil {
				out[key] = nil
				continue
			}
			v, ok := toFloat64(raw)
			limit := 90.0
			if key == "longitude" {
				limit = 180
			}
			if !ok || math.Abs(v) > limit {
				return nil, ErrDormitoryInvalid.WithMessage("字段 %s 超出范围", key)
			}
			out[key] = v
		}
	}
	return out, nil
}

func validateCoordinates(lat, lng *float64) error {
	if lat != nil && math.Abs(*lat) > 90 {
		return ErrDormitoryInvalid.WithMessage("latitude 超出范围")
	}
	if lng != nil && math.Abs(*lng) > 180 {
		return ErrDormitoryInvalid.WithMessage("longitude 超出范围")
	}
	return nil
}

func toAmenities(in []dto.AmenityPayload) ([]model.DormitoryAmenity, error) {
	out := make([]model.DormitoryAmenity, 0, len(in))
	for _, a := range lo.UniqBy(in, func(a dto.AmenityPayload) int64 { return a.AmenityID }) {
		if a.AmenityID <= 0 {
			return nil, ErrAmenityNotFound
		}
		loc := a.LocationType
		if loc == "" {
			loc = "indoor"
		}
		out = append(out, model.DormitoryAmenity{AmenityID: a.AmenityID, LocationType: loc, IsAvailable: true})
	}
	return out, nil
}

func toRoomTypes(in []dto.RoomTypePayload) ([]model.RoomType, error) {
	out := make([]model.RoomType, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		rt, err := toRoomType(p)
		if err != nil {
			return nil, err
		}
		if seen[rt.RoomName] {
			return nil, ErrRoomTypeInvalid.WithMessage("房型名称重复: %s", rt.RoomName)
		}
		seen[rt.RoomName] = true
		out = append(out, *rt)
	}
	return out, nil
}

func toRoomType(p dto.RoomTypePayload) (*model.RoomType, error) {
	name := strings.TrimSpace(p.RoomName)
	if name == "" {
		return nil, ErrRoomTypeInvalid.WithMessage("房型名称不能为空")
	}
	for _, price := range []*float64{p.MonthlyPrice, p.DailyPrice, p.SummerPrice} {
		if price != nil && *price < 0 {
			return nil, ErrRoomTypeInvalid.WithMessage("价格不能为负数")
		}
	}
	if p.MaxOccupancy != nil && *p.MaxOccupancy <= 0 {
		return nil, ErrRoomTypeInvalid.WithMessage("入住人数必须大于 0")
	}
	available := true
	if p.IsAvailable != nil {
		available = *p.IsAvailable
	}
	return &model.RoomType{
		RoomName:     name,
		MonthlyPrice: p.MonthlyPrice,
		DailyPrice:   p.DailyPrice,
		SummerPrice:  p.SummerPrice,
		MaxOccupancy: p.MaxOccupancy,
		IsAvailable:  available,
	}, nil
}

func toContact(p *dto.ContactPayload) *model.ContactInfo {
	return &model.ContactInfo{
		Phone:   trimOptional(p.Phone),
		LineID:  trimOptional(p.LineID),
		Email:   trimOptional(p.Email),
		Website: trimOptional(p.Website),
	}
}

func requireZone(ctx context.Context, repo *repository.Repository, zoneID int64) error {
	ok, err := repo.Zone.Exists(ctx, zoneID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrZoneNotFound
	}
	return nil
}

func requireAmenities(ctx context.Context, repo *repository.Repository, amenities []model.DormitoryAmenity) error {
	if len(amenities) == 0 {
		return nil
	}
	ids := lo.Map(amenities, func(a model.DormitoryAmenity, _ int) int64 { return a.AmenityID })
	existing, err := repo.Amenity.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if missing, _ := lo.Difference(ids, existing); len(missing) > 0 {
		return ErrAmenityNotFound.WithMessage("设施不存在: %v", missing)
	}
	return nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
