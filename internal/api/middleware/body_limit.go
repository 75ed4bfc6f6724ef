package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dormhub/pkg/response"
)

// BodyLimit 请求体大小限制
// JSON 请求使用 maxBytes，multipart 上传使用 maxMultipart（图片张数 × 单张上限）
// 超限时读取请求体会返回 *http.MaxBytesError，由 Handler 映射为 413
func BodyLimit(maxBytes, maxMultipart int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			limit := maxBytes
			if strings.HasPrefix(c.ContentType(), "multipart/") {
				limit = maxMultipart
			}
			if c.Request.ContentLength > limit {
				c.Header("Connection", "close")
				tooLarge(c)
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}

func tooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
	c.Abort()
}
