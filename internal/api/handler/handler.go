package handler

import (
	"go.uber.org/zap"

	"dormhub/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Dormitory  *DormitoryHandler
	RoomType   *RoomTypeHandler
	Image      *ImageHandler
	Membership *MembershipHandler
	Review     *ReviewHandler
	Catalog    *CatalogHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	errs := newErrorResponder(logger)
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, errs),
		User:       NewUserHandler(svc.User, errs),
		Dormitory:  NewDormitoryHandler(svc.Dormitory, errs),
		RoomType:   NewRoomTypeHandler(svc.RoomType, errs),
		Image:      NewImageHandler(svc.Image, errs),
		Membership: NewMembershipHandler(svc.Membership, errs),
		Review:     NewReviewHandler(svc.Review, errs),
		Catalog:    NewCatalogHandler(svc.Catalog, errs),
		Export:     NewExportHandler(svc.Export, errs),
	}
}
