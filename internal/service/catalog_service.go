package service

import (
	"context"

	"go.uber.org/zap"

	"dormhub/internal/model"
	"dormhub/internal/repository"
)

// CatalogService 区域与设施字典
type CatalogService interface {
	Zones(ctx context.Context) ([]model.Zone, error)
	Amenities(ctx context.Context) ([]model.Amenity, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

func (s *catalogService) Zones(ctx context.Context) ([]model.Zone, error) {
	zones, err := s.repo.Zone.List(ctx)
	if err != nil {
		s.logger.Error("查询区域列表失败", zap.Error(err))
		return nil, err
	}
	return zones, nil
}

func (s *catalogService) Amenities(ctx context.Context) ([]model.Amenity, error) {
	amenities, err := s.repo.Amenity.List(ctx)
	if err != nil {
		s.logger.Error("查询设施列表失败", zap.Error(err))
		return nil, err
	}
	return amenities, nil
}
