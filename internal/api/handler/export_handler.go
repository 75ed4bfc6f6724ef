package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"dormhub/internal/service"
	"dormhub/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	errs      *errorResponder
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, errs *errorResponder) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, errs: errs}
}

// ExportDormitories 导出宿舍清单（管理员）
// GET /api/v1/admin/export/dormitories?status=approved
func (h *ExportHandler) ExportDormitories(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", "pending", "approved", "rejected":
	default:
		response.BadRequest(c, 10001, "status 无效")
		return
	}

	buf, filename, err := h.exportSvc.ExportDormitories(c.Request.Context(), status)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	attachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportStayCalendar 导出本人居住历史为 iCalendar
// GET /api/v1/members/me/stays/calendar
func (h *ExportHandler) ExportStayCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportStayCalendar(c.Request.Context(), userID)
	if err != nil {
		h.errs.handleError(c, err)
		return
	}

	attachment(c, filename, icsContentType, data)
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
