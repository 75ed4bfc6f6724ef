package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dormhub/internal/model"
	"dormhub/internal/service"
	"dormhub/pkg/jwt"
	"dormhub/pkg/response"
)

// 上下文键
const (
	CtxIdentity = "identity"
	CtxUser     = "user"
	CtxUserID   = "user_id"
	CtxRole     = "role"
)

// 认证失败业务码
const (
	codeUnauthenticated = 10002
	codeTokenExpired    = 10006
	codeTokenRevoked    = 10007
	codeVerifierDown    = 10008
)

// TokenVerifier 校验 Bearer 凭证
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*jwt.Identity, error)
}

// UserResolver 按身份查找本地用户
type UserResolver interface {
	ResolveUser(ctx context.Context, uid string) (*model.User, error)
}

// Authenticate 校验 Authorization: Bearer <id token>，通过后把身份注入上下文
// 尚未建档的用户也可以通过（注册、完善资料接口需要）
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, codeUnauthenticated, "缺少认证头或格式无效")
			c.Abort()
			return
		}
		if !verify(c, verifier, raw) {
			return
		}
		c.Next()
	}
}

// OptionalAuth 带凭证时按 Authenticate + RequireUser 处理，不带则匿名放行
// 凭证无效时仍然拒绝，避免静默降级为匿名
func OptionalAuth(verifier TokenVerifier, resolver UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		raw, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, codeUnauthenticated, "认证头格式无效")
			c.Abort()
			return
		}
		if !verify(c, verifier, raw) {
			return
		}
		identity := c.MustGet(CtxIdentity).(*jwt.Identity)
		user, err := resolver.ResolveUser(c.Request.Context(), identity.UID)
		if err == nil {
			setUser(c, user)
		} else if !isNotRegistered(err) {
			logger.Error("解析当前用户失败", zap.String("uid", identity.UID), zap.Error(err))
		}
		c.Next()
	}
}

// RequireUser 要求身份已在本地建档，注入 user / user_id / role
// 必须挂在 Authenticate 之后
func RequireUser(resolver UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxIdentity)
		identity, ok := v.(*jwt.Identity)
		if !exists || !ok {
			response.Unauthorized(c, codeUnauthenticated, "未认证")
			c.Abort()
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), identity.UID)
		if err != nil {
			if isNotRegistered(err) {
				response.Forbidden(c, service.ErrNotRegistered.Code, service.ErrNotRegistered.Message)
			} else {
				logger.Error("解析当前用户失败", zap.String("uid", identity.UID), zap.Error(err))
				response.InternalError(c, GetRequestID(c))
			}
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Unauthorized(c, codeUnauthenticated, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// verify 失败时写入响应并中止，返回是否通过
func verify(c *gin.Context, verifier TokenVerifier, raw string) bool {
	identity, err := verifier.Verify(c.Request.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrVerifierUnavailable):
			response.ServiceUnavailable(c, codeVerifierDown, "身份验证服务暂不可用")
		case errors.Is(err, jwt.ErrTokenExpired):
			response.Unauthorized(c, codeTokenExpired, "Token 已过期")
		case errors.Is(err, jwt.ErrTokenRevoked):
			response.Unauthorized(c, codeTokenRevoked, "Token 已被吊销")
		default:
			response.Unauthorized(c, codeUnauthenticated, "Token 无效")
		}
		c.Abort()
		return false
	}
	c.Set(CtxIdentity, identity)
	return true
}

func setUser(c *gin.Context, user *model.User) {
	c.Set(CtxUser, user)
	c.Set(CtxUserID, user.ID)
	c.Set(CtxRole, user.MemberType)
}

func isNotRegistered(err error) bool {
	return errors.Is(err, service.ErrNotRegistered)
}
