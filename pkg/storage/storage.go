// Package storage 对象存储上传（S3 兼容接口，生产环境为 Cloudflare R2）。
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dormhub/config"
)

// 上传目录
const (
	FolderProfiles    = "profiles"
	FolderDormitories = "dormitories"
)

// ErrUnsupportedType 文件内容不是允许的图片格式
var ErrUnsupportedType = errors.New("不支持的文件类型")

// allowedImageTypes 允许上传的图片 MIME 类型
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Uploader 对象存储上传接口
type Uploader interface {
	// Upload 上传数据并返回可公开访问的 URL
	Upload(ctx context.Context, data []byte, contentType, folder string) (string, error)
}

// DetectImage 按文件内容（而非扩展名）识别图片类型，返回 MIME 与扩展名
func DetectImage(data []byte) (string, string, error) {
	mt := mimetype.Detect(data)
	for mime, ext := range allowedImageTypes {
		if mt.Is(mime) {
			return mime, ext, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

// R2Uploader 基于 aws-sdk-go-v2 的 S3 兼容上传实现
type R2Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewR2Uploader 创建上传客户端
func NewR2Uploader(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*R2Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage.bucket 不能为空")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("加载对象存储配置失败: %w", err)
	}

	endpoint := cfg.ResolvedEndpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	logger.Info("对象存储初始化完成", zap.String("endpoint", endpoint), zap.String("bucket", cfg.Bucket))

	return &R2Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Upload 上传到 folder/<uuid><ext>
func (u *R2Uploader) Upload(ctx context.Context, data []byte, contentType, folder string) (string, error) {
	key := ObjectKey(folder, contentType)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		u.logger.Error("上传对象失败", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("上传对象失败: %w", err)
	}

	return u.publicBaseURL + "/" + key, nil
}

// ObjectKey 生成对象键
func ObjectKey(folder, contentType string) string {
	ext := allowedImageTypes[contentType]
	return folder + "/" + uuid.NewString() + ext
}
