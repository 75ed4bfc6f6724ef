package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dormhub/config"
	"dormhub/internal/repository"
	"dormhub/pkg/storage"
)

// SessionRevoker 记录会话吊销时刻（由 Redis 实现）
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, uid string, at time.Time) error
}

// timeNow 当前时间，测试中可替换
var timeNow = time.Now

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Dormitory  DormitoryService
	RoomType   RoomTypeService
	Image      ImageService
	Membership MembershipService
	Review     ReviewService
	Catalog    CatalogService
	Export     ExportService
}

// NewService 创建 Service 聚合
// revoker 为 nil 时吊销会话接口返回依赖不可用
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	uploader storage.Uploader,
	revoker SessionRevoker,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, revoker, logger),
		User:       NewUserService(&cfg.Server, repo, uploader, logger),
		Dormitory:  NewDormitoryService(repo, logger),
		RoomType:   NewRoomTypeService(repo, logger),
		Image:      NewImageService(&cfg.Server, repo, uploader, logger),
		Membership: NewMembershipService(repo, logger),
		Review:     NewReviewService(repo, logger),
		Catalog:    NewCatalogService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
