package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const defaultKeyTTL = time.Hour

// CertKeySource 从身份提供方公开的 x509 证书端点拉取验签公钥
// 按响应头 Cache-Control: max-age 缓存，过期后惰性刷新
type CertKeySource struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
	now       func() time.Time
}

// NewCertKeySource 创建证书公钥源
func NewCertKeySource(url string, timeout time.Duration) *CertKeySource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CertKeySource{
		url:    url,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// PublicKey 返回 kid 对应的公钥
func (s *CertKeySource) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[kid]
	fresh := s.now().Before(s.expiresAt)
	s.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	if !fresh {
		if err := s.refresh(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
		key, ok = s.keys[kid]
		s.mu.RUnlock()
		if ok {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: 未知的 kid %q", ErrTokenMalformed, kid)
}

func (s *CertKeySource) refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 等锁期间可能已被其他请求刷新
	if s.now().Before(s.expiresAt) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: 证书端点返回 HTTP %d", ErrVerifierUnavailable, resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&certs); err != nil {
		return fmt.Errorf("%w: 解析证书失败: %v", ErrVerifierUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwtv5.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("%w: 证书 %s 无效: %v", ErrVerifierUnavailable, kid, err)
		}
		keys[kid] = key
	}

	s.keys = keys
	s.expiresAt = s.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	return nil
}

// maxAge 解析 Cache-Control 中的 max-age，缺省一小时
func maxAge(header string) time.Duration {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
				return time.Duration(sec) * time.Second
			}
		}
	}
	return defaultKeyTTL
}

// StaticKeySource 固定公钥集合（测试与本地模拟器使用）
type StaticKeySource map[string]*rsa.PublicKey

func (s StaticKeySource) PublicKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := s[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: 未知的 kid %q", ErrTokenMalformed, kid)
}
