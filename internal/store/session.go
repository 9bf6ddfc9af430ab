package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/storefront-next/internal/auth"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

// 登录失败的兜底提示（认证端点未给出消息时）
const loginFailedMessage = "Login failed"

// SessionStore 会话凭证存储。
// 持有外部认证服务下发的 bearer token 与展示用户名，
// token 获取后写入持久化存储，登出时删除；无 token 即未认证。
type SessionStore struct {
	mu       sync.Mutex
	kv       storage.KV
	client   *auth.Client
	token    string
	username string
	lastErr  string
}

// NewSessionStore 创建会话存储并从持久化凭证恢复
func NewSessionStore(kv storage.KV, client *auth.Client) (*SessionStore, error) {
	if kv == nil {
		return nil, ErrStorageNil
	}
	s := &SessionStore{kv: kv, client: client}

	raw, ok, err := kv.Get(context.Background(), constants.StorageKeyToken)
	if err != nil {
		return nil, err
	}
	if ok {
		token := strings.TrimSpace(string(raw))
		if token != "" {
			s.token = token
			s.username = usernameFromToken(token)
		}
	}
	return s, nil
}

// Login 调用外部认证端点。成功返回 true 并持久化凭证；
// 失败返回 false，失败消息通过 Err() 暴露，状态保持未认证。
// error 仅用于凭证持久化失败。
func (s *SessionStore) Login(ctx context.Context, username, password string) (bool, error) {
	if s.client == nil {
		s.setError(loginFailedMessage)
		return false, nil
	}

	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		message := loginFailedMessage
		var denied *auth.DeniedError
		if errors.As(err, &denied) && denied.Message != "" {
			message = denied.Message
		}
		logger.Warnw("session_login_failed", "username", username, "error", err)
		s.setError(message)
		return false, nil
	}

	s.mu.Lock()
	s.token = token
	s.username = username
	s.lastErr = ""
	s.mu.Unlock()

	return true, s.kv.Set(ctx, constants.StorageKeyToken, []byte(token))
}

// Logout 丢弃会话凭证并删除持久化记录
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.username = ""
	s.lastErr = ""
	s.mu.Unlock()
	return s.kv.Delete(ctx, constants.StorageKeyToken)
}

// IsAuthenticated 是否已认证（等价于持有 token）
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Token 当前 bearer token（未认证时为空）
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User 展示用户名（未认证时为空）
func (s *SessionStore) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Err 最近一次登录失败的可读消息（登录成功或登出后清空）
func (s *SessionStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *SessionStore) setError(message string) {
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()
}

// usernameFromToken 从外部 token 中恢复展示用户名。
// token 由外部服务签发，本服务不持有密钥，只做不校验的声明解码。
func usernameFromToken(token string) string {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	if user, ok := claims["user"].(string); ok {
		return user
	}
	return ""
}
