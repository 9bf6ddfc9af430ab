package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("auth config invalid")
	ErrRequestFailed   = errors.New("auth request failed")
	ErrResponseInvalid = errors.New("auth response invalid")
)

const defaultTimeout = 10 * time.Second

// DeniedError 认证端点拒绝登录（凭证错误等），携带服务端消息。
type DeniedError struct {
	Message string
}

func (e *DeniedError) Error() string {
	if e.Message == "" {
		return "auth login denied"
	}
	return "auth login denied: " + e.Message
}

// Config 外部认证服务配置
type Config struct {
	BaseURL   string `json:"base_url"`   // 认证服务地址
	TimeoutMS int    `json:"timeout_ms"` // 请求超时（毫秒）
}

// Client 外部认证服务客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建认证客户端
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	timeout := defaultTimeout
	if cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Login 调用外部登录端点，成功返回 bearer token。
// 凭证被拒时返回 *DeniedError（携带服务端消息）。
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &DeniedError{Message: extractMessage(body)}
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if strings.TrimSpace(result.Token) == "" {
		return "", fmt.Errorf("%w: empty token", ErrResponseInvalid)
	}
	return result.Token, nil
}

// extractMessage 从错误响应中提取可读消息（格式不固定，尽力解析）
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	text := strings.TrimSpace(string(body))
	if text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return ""
}
