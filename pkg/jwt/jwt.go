// Package jwt 校验身份提供方（Firebase Authentication）签发的 ID Token。
//
// 只做验签与声明校验，不负责签发：登录流程完全由身份提供方完成。
package jwt

import (
	"context"
	"crypto/rsa"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"dormhub/config"
)

// 拒绝原因
var (
	ErrTokenExpired        = errors.New("token 已过期")
	ErrTokenRevoked        = errors.New("token 已被吊销")
	ErrTokenMalformed      = errors.New("token 格式无效")
	ErrVerifierUnavailable = errors.New("身份验证服务不可用")
)

const issuerPrefix = "https://securetoken.google.com/"

// Claims ID Token 声明
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	AuthTime      int64  `json:"auth_time"`
	jwtv5.RegisteredClaims
}

// Identity 校验通过后的调用方身份
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	IssuedAt      time.Time
}

// KeySource 按 kid 提供验签公钥
type KeySource interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// RevocationChecker 查询用户会话吊销时刻
type RevocationChecker interface {
	RevokedAt(ctx context.Context, uid string) (time.Time, bool, error)
}

// Verifier ID Token 校验器
type Verifier struct {
	projectID   string
	keys        KeySource
	revocations RevocationChecker
	now         func() time.Time
}

// NewVerifier 创建校验器；revocations 为 nil 时跳过吊销检查
func NewVerifier(cfg *config.FirebaseConfig, keys KeySource, revocations RevocationChecker) *Verifier {
	return &Verifier{
		projectID:   cfg.ProjectID,
		keys:        keys,
		revocations: revocations,
		now:         time.Now,
	}
}

// Verify 校验 ID Token 并返回调用方身份
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if raw == "" {
		return nil, ErrTokenMalformed
	}

	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodRS256.Alg()}),
		jwtv5.WithAudience(v.projectID),
		jwtv5.WithIssuer(issuerPrefix+v.projectID),
		jwtv5.WithIssuedAt(),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwtv5.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrTokenMalformed
		}
		return v.keys.PublicKey(ctx, kid)
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || len(claims.Subject) > 128 {
		return nil, ErrTokenMalformed
	}
	if claims.IssuedAt == nil {
		return nil, ErrTokenMalformed
	}

	identity := &Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
		IssuedAt:      claims.IssuedAt.Time,
	}

	if v.revocations != nil {
		// 吊销存储故障时降级放行，令牌本身仍已通过验签与有效期校验
		revokedAt, ok, err := v.revocations.RevokedAt(ctx, identity.UID)
		if err == nil && ok && !identity.IssuedAt.After(revokedAt) {
			return nil, ErrTokenRevoked
		}
	}

	return identity, nil
}

// classify 将 jwt 库错误归并为四类拒绝原因
func classify(err error) error {
	switch {
	case errors.Is(err, ErrVerifierUnavailable):
		return ErrVerifierUnavailable
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
