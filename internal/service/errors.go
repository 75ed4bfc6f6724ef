package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	pkgerrors "dormhub/pkg/errors"
)

// ── 用户 / 认证模块业务错误 (11xxx) ──

var (
	ErrUserNotFound          = pkgerrors.NotFound(11001, "用户不存在")
	ErrAlreadyRegistered     = pkgerrors.Conflict(11002, "该账号已注册")
	ErrUsernameTaken         = pkgerrors.Conflict(11003, "用户名已被占用")
	ErrProfileInvalid        = pkgerrors.Invalid(11004, "资料校验失败")
	ErrNotRegistered         = pkgerrors.Forbidden(11005, "请先完成注册")
	ErrRevocationUnavailable = pkgerrors.Dependency(11006, "会话吊销服务不可用")
	ErrAdminOnly             = pkgerrors.Forbidden(11007, "仅管理员可执行该操作")
)

// ── 宿舍模块业务错误 (12xxx) ──

var (
	ErrDormitoryNotFound    = pkgerrors.NotFound(12001, "宿舍不存在")
	ErrDormitoryForbidden   = pkgerrors.Forbidden(12002, "无权操作该宿舍")
	ErrDormitoryInvalid     = pkgerrors.Invalid(12003, "宿舍信息校验失败")
	ErrDormitoryNotApproved = pkgerrors.Invalid(12004, "宿舍尚未通过审核")
	ErrZoneNotFound         = pkgerrors.Invalid(12005, "区域不存在")
	ErrAmenityNotFound      = pkgerrors.Invalid(12006, "设施不存在")
	ErrOwnerOnly            = pkgerrors.Forbidden(12007, "仅房东可执行该操作")
)

// ── 房型模块业务错误 (13xxx) ──

var (
	ErrRoomTypeNotFound  = pkgerrors.NotFound(13001, "房型不存在")
	ErrRoomTypeDuplicate = pkgerrors.Conflict(13002, "同一宿舍内房型名称重复")
	ErrRoomTypeInvalid   = pkgerrors.Invalid(13003, "房型信息校验失败")
)

// ── 图片模块业务错误 (14xxx) ──

var (
	ErrImageNotFound     = pkgerrors.NotFound(14001, "图片不存在")
	ErrImageUnsupported  = pkgerrors.Invalid(14002, "仅支持 JPEG / PNG / WebP / GIF 图片")
	ErrImageTooLarge     = pkgerrors.Invalid(14003, "图片超过大小限制")
	ErrImageUploadFailed = pkgerrors.Dependency(14004, "图片上传失败")
	ErrImageCount        = pkgerrors.Invalid(14005, "图片数量不符合要求")
)

// ── 入住申请模块业务错误 (15xxx) ──

var (
	ErrRequestNotFound   = pkgerrors.NotFound(15001, "入住申请不存在")
	ErrRequestNotPending = pkgerrors.Conflict(15002, "申请已处理，无法重复操作")
	ErrMemberOnly        = pkgerrors.Forbidden(15003, "仅住户可执行该操作")
	ErrAlreadyResident   = pkgerrors.Invalid(15004, "已居住在该宿舍")
	ErrRequestForbidden  = pkgerrors.Forbidden(15005, "无权操作该申请")
)

// ── 评价模块业务错误 (16xxx) ──

var (
	ErrReviewNotFound     = pkgerrors.NotFound(16001, "评价不存在")
	ErrReviewDuplicate    = pkgerrors.Conflict(16002, "已评价过该宿舍")
	ErrReviewNotEligible  = pkgerrors.Forbidden(16003, "仅该宿舍的住户可以评价")
	ErrReviewInvalidScore = pkgerrors.Invalid(16004, "评分必须在 1-5 之间")
	ErrReviewEmptyComment = pkgerrors.Invalid(16005, "评价内容不能为空")
	ErrReviewForbidden    = pkgerrors.Forbidden(16006, "无权修改该评价")
)

// ── 导出模块业务错误 (18xxx) ──

var (
	ErrExportNoData       = pkgerrors.NotFound(18001, "暂无可导出的数据")
	ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindInternal, 18002, "生成导出文件失败")
)

// notFoundAs 将 gorm.ErrRecordNotFound 映射为业务错误，其余错误原样返回
func notFoundAs(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// logUnexpected 业务错误原样返回；未分类错误记录日志后返回
func logUnexpected(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	if _, ok := pkgerrors.As(err); ok {
		return err
	}
	logger.Error(msg, append(fields, zap.Error(err))...)
	return err
}
