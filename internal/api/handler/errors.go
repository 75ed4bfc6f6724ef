package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dormhub/internal/api/middleware"
	"dormhub/internal/service"
	apperrors "dormhub/pkg/errors"
	"dormhub/pkg/response"
)

// errorResponder 统一把服务层错误映射为 HTTP 响应
type errorResponder struct {
	logger *zap.Logger
}

func newErrorResponder(logger *zap.Logger) *errorResponder {
	return &errorResponder{logger: logger}
}

var kindStatus = map[apperrors.Kind]int{
	apperrors.KindInvalid:         http.StatusBadRequest,
	apperrors.KindUnauthenticated: http.StatusUnauthorized,
	apperrors.KindForbidden:       http.StatusForbidden,
	apperrors.KindNotFound:        http.StatusNotFound,
	apperrors.KindConflict:        http.StatusConflict,
	apperrors.KindDependency:      http.StatusBadGateway,
}

// handleError 业务错误按类别返回状态码与业务码；未分类错误记日志后返回通用 500
func (r *errorResponder) handleError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}

	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindInternal {
		rid := middleware.GetRequestID(c)
		r.logger.Error("请求处理异常",
			zap.String("path", c.FullPath()),
			zap.String("request_id", rid),
			zap.Error(err),
		)
		response.InternalError(c, rid)
		return
	}

	status := kindStatus[appErr.Kind]
	if errors.Is(err, service.ErrRevocationUnavailable) {
		status = http.StatusServiceUnavailable
	}
	response.Error(c, status, appErr.Code, appErr.Message)
}

// bindError 请求体 / 查询参数绑定失败
func (r *errorResponder) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}
