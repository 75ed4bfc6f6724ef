package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"dormhub/internal/api/middleware"
	"dormhub/internal/model"
	"dormhub/pkg/jwt"
	"dormhub/pkg/response"
)

// MustGetIdentity 从上下文提取已验证的身份。
// 调用方应在 ok=false 时直接 return。
func MustGetIdentity(c *gin.Context) (*jwt.Identity, bool) {
	v, exists := c.Get(middleware.CtxIdentity)
	identity, ok := v.(*jwt.Identity)
	if !exists || !ok || identity == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return identity, true
}

// MustGetUser 从上下文提取已建档的当前用户（RequireUser 中间件注入）
func MustGetUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(middleware.CtxUser)
	user, ok := v.(*model.User)
	if !exists || !ok || user == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return user, true
}

// MustGetUserID 当前用户的内部 id
func MustGetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	id, ok := v.(int64)
	if !exists || !ok || id <= 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// OptionalUser 可选认证路由上的当前用户，匿名访问返回 nil
func OptionalUser(c *gin.Context) *model.User {
	if v, ok := c.Get(middleware.CtxUser); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

// MustParseID 解析路径中的正整数 id
func MustParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, name+" 无效")
		return 0, false
	}
	return id, true
}
