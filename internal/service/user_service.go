package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dormhub/config"
	"dormhub/internal/model"
	"dormhub/internal/repository"
	"dormhub/pkg/storage"
)

// UserService 用户资料业务接口
type UserService interface {
	// UpdateProfile 按字段映射表做部分更新，键为逻辑字段名（firstName、businessPhone 等）
	UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) (*model.User, error)
	UploadAvatar(ctx context.Context, userID int64, data []byte) (*model.User, error)
	// UsernameAvailable excludeID 为调用方自身 id（未建档为 0）
	UsernameAvailable(ctx context.Context, username string, excludeID int64) (bool, error)
}

type userService struct {
	cfg      *config.ServerConfig
	repo     *repository.Repository
	uploader storage.Uploader
	logger   *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.ServerConfig, repo *repository.Repository, uploader storage.Uploader, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, uploader: uploader, logger: logger}
}

// 各角色可修改的字段；必填字段不允许置空
var (
	memberOnlyFields = map[string]bool{"university": true, "studentId": true}
	ownerOnlyFields  = map[string]bool{"businessName": true, "businessPhone": true}
	requiredFields   = map[string]bool{"username": true, "firstName": true, "lastName": true}
)

func (s *userService) UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) (*model.User, error) {
	if len(fields) == 0 {
		return nil, ErrProfileInvalid.WithMessage("没有需要更新的字段")
	}
	if _, _, err := repository.UserFieldColumns.Resolve(fields); err != nil {
		return nil, ErrProfileInvalid.WithMessage("%v", err)
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	normalized, err := normalizeUserFields(user, fields)
	if err != nil {
		return nil, err
	}

	if v, ok := normalized["username"].(string); ok {
		taken, err := s.repo.User.UsernameTaken(ctx, v, userID)
		if err != nil {
			s.logger.Error("检查用户名失败", zap.Error(err))
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}

	if err := s.repo.User.UpdateFields(ctx, userID, normalized); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("更新用户资料失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.repo.User.GetByID(ctx, userID)
}

// normalizeUserFields 校验类型与角色归属，字符串去空格，空串视为清空
func normalizeUserFields(user *model.User, fields map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for key, raw := range fields {
		if memberOnlyFields[key] && !user.IsMember() {
			return nil, ErrProfileInvalid.WithMessage("字段 %s 仅住户可修改", key)
		}
		if ownerOnlyFields[key] && !user.IsOwner() {
			return nil, ErrProfileInvalid.WithMessage("字段 %s 仅房东可修改", key)
		}

		var value *string
		switch v := raw.(type) {
		case nil:
		case string:
			if t := strings.TrimSpace(v); t != "" {
				value = &t
			}
		default:
			return nil, ErrProfileInvalid.WithMessage("字段 %s 必须为字符串", key)
		}

		required := requiredFields[key] ||
			(key == "university" && user.IsMember()) ||
			(key == "businessPhone" && user.IsOwner())
		if required && value == nil {
			return nil, ErrProfileInvalid.WithMessage("字段 %s 不能为空", key)
		}
		if key == "username" && !usernamePattern.MatchString(*value) {
			return nil, ErrProfileInvalid.WithMessage("用户名只能包含字母、数字、下划线和点，长度 3-30")
		}

		if value == nil {
			out[key] = nil
		} else {
			out[key] = *value
		}
	}
	return out, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int64, data []byte) (*model.User, error) {
	if len(data) == 0 {
		return nil, ErrImageCount
	}
	if int64(len(data)) > s.cfg.MaxUploadSize {
		return nil, ErrImageTooLarge
	}
	mime, _, err := storage.DetectImage(data)
	if err != nil {
		return nil, ErrImageUnsupported
	}

	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	url, err := s.uploader.Upload(ctx, data, mime, storage.FolderProfiles)
	if err != nil {
		s.logger.Error("上传头像失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, ErrImageUploadFailed.Wrap(err)
	}

	if err := s.repo.User.SetProfileImage(ctx, userID, url); err != nil {
		s.logger.Error("保存头像地址失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, notFoundAs(err, ErrUserNotFound)
	}

	return s.repo.User.GetByID(ctx, userID)
}

func (s *userService) UsernameAvailable(ctx context.Context, username string, excludeID int64) (bool, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return false, ErrProfileInvalid.WithMessage("用户名只能包含字母、数字、下划线和点，长度 3-30")
	}
	taken, err := s.repo.User.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		s.logger.Error("检查用户名失败", zap.Error(err))
		return false, err
	}
	return !taken, nil
}
