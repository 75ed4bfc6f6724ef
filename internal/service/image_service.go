package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"dormhub/config"
	"dormhub/internal/model"
	"dormhub/internal/repository"
	"dormhub/pkg/storage"
)

// ImageUpload 待上传的图片
type ImageUpload struct {
	Data      []byte
	ImageType string
}

// ImageService 宿舍图片业务接口
type ImageService interface {
	// Upload 先上传对象存储，再在单事务内写入图片行；宿舍尚无主图时第一张成为主图
	Upload(ctx context.Context, ownerID, dormID int64, files []ImageUpload) ([]model.DormitoryImage, error)
	SetPrimary(ctx context.Context, ownerID, imageID int64) error
	// Delete 删除主图时把最新的一张提升为主图
	Delete(ctx context.Context, ownerID, imageID int64) error
}

type imageService struct {
	cfg      *config.ServerConfig
	repo     *repository.Repository
	uploader storage.Uploader
	logger   *zap.Logger
}

// NewImageService 创建 ImageService 实例
func NewImageService(cfg *config.ServerConfig, repo *repository.Repository, uploader storage.Uploader, logger *zap.Logger) ImageService {
	return &imageService{cfg: cfg, repo: repo, uploader: uploader, logger: logger}
}

var imageTypes = map[string]bool{
	model.ImageTypeGeneral:  true,
	model.ImageTypeRoom:     true,
	model.ImageTypeExterior: true,
}

func (s *imageService) Upload(ctx context.Context, ownerID, dormID int64, files []ImageUpload) ([]model.DormitoryImage, error) {
	if len(files) == 0 || (s.cfg.MaxUploadFile > 0 && len(files) > s.cfg.MaxUploadFile) {
		return nil, ErrImageCount
	}

	mimes := make([]string, len(files))
	for i, f := range files {
		if int64(len(f.Data)) > s.cfg.MaxUploadSize {
			return nil, ErrImageTooLarge
		}
		mime, _, err := storage.DetectImage(f.Data)
		if err != nil {
			return nil, ErrImageUnsupported
		}
		mimes[i] = mime

		t := strings.TrimSpace(f.ImageType)
		if t == "" {
			t = model.ImageTypeGeneral
		}
		if !imageTypes[t] {
			return nil, ErrImageUnsupported.WithMessage("未知的图片类型: %s", t)
		}
		files[i].ImageType = t
	}

	// 上传前先确认归属，避免为无权限的请求产生对象
	dorm, err := s.repo.Dormitory.GetByID(ctx, dormID)
	if err != nil {
		return nil, logUnexpected(s.logger, "查询宿舍失败", notFoundAs(err, ErrDormitoryNotFound), zap.Int64("dorm_id", dormID))
	}
	if dorm.OwnerID != ownerID {
		return nil, ErrDormitoryForbidden
	}

	urls := make([]string, len(files))
	for i, f := range files {
		url, err := s.uploader.Upload(ctx, f.Data, mimes[i], storage.FolderDormitories)
		if err != nil {
			s.logger.Error("上传宿舍图片失败", zap.Int64("dorm_id", dormID), zap.Error(err))
			return nil, ErrImageUploadFailed.Wrap(err)
		}
		urls[i] = url
	}

	images := make([]model.DormitoryImage, len(files))
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if _, err := authorizeOwner(ctx, tx, dormID, ownerID); err != nil {
			return err
		}
		existing, err := tx.Image.ListByDorm(ctx, dormID)
		if err != nil {
			return err
		}
		hasPrimary := len(existing) > 0 && existing[0].IsPrimary

		for i := range files {
			images[i] = model.DormitoryImage{
				DormID:    dormID,
				ImageURL:  urls[i],
				ImageType: files[i].ImageType,
				IsPrimary: !hasPrimary && i == 0,
			}
			if err := tx.Image.Create(ctx, &images[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// TODO: 事务失败时已上传的对象成为孤儿，需要对象存储侧的定期清理任务
		return nil, logUnexpected(s.logger, "保存宿舍图片失败", err, zap.Int64("dorm_id", dormID))
	}

	s.logger.Info("宿舍图片已上传", zap.Int64("dorm_id", dormID), zap.Int("count", len(images)))
	return images, nil
}

func (s *imageService) SetPrimary(ctx context.Context, ownerID, imageID int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		img, err := tx.Image.GetByID(ctx, imageID)
		if err != nil {
			return notFoundAs(err, ErrImageNotFound)
		}
		if _, err := authorizeOwner(ctx, tx, img.DormID, ownerID); err != nil {
			return err
		}
		if err := tx.Image.ClearPrimary(ctx, img.DormID); err != nil {
			return err
		}
		return notFoundAs(tx.Image.SetPrimary(ctx, imageID), ErrImageNotFound)
	})
	if err != nil {
		return logUnexpected(s.logger, "设置主图失败", err, zap.Int64("image_id", imageID))
	}
	return nil
}

func (s *imageService) Delete(ctx context.Context, ownerID, imageID int64) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		img, err := tx.Image.GetByID(ctx, imageID)
		if err != nil {
			return notFoundAs(err, ErrImageNotFound)
		}
		if _, err := authorizeOwner(ctx, tx, img.DormID, ownerID); err != nil {
			return err
		}
		if err := tx.Image.Delete(ctx, imageID); err != nil {
			return notFoundAs(err, ErrImageNotFound)
		}
		if !img.IsPrimary {
			return nil
		}

		rest, err := tx.Image.ListByDorm(ctx, img.DormID)
		if err != nil {
			return err
		}
		if len(rest) == 0 {
			return nil
		}
		return tx.Image.SetPrimary(ctx, rest[0].ID)
	})
	if err != nil {
		return logUnexpected(s.logger, "删除图片失败", err, zap.Int64("image_id", imageID))
	}
	return nil
}
