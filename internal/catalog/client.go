package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
)

var (
	ErrConfigInvalid   = errors.New("catalog config invalid")
	ErrRequestFailed   = errors.New("catalog request failed")
	ErrResponseInvalid = errors.New("catalog response invalid")
	ErrProductNotFound = errors.New("catalog product not found")
)

const defaultTimeout = 10 * time.Second

// Config 外部目录服务配置
type Config struct {
	BaseURL   string `json:"base_url"`   // 目录服务地址，如 https://fakestoreapi.com
	TimeoutMS int    `json:"timeout_ms"` // 请求超时（毫秒）
}

// Client 外部目录服务客户端（只读，无重试、无缓存、无分页）
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建目录客户端
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

// ListProducts 获取全部商品
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories 获取分类列表
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListByCategory 按分类获取商品
func (c *Client) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return c.ListProducts(ctx)
	}
	var products []models.Product
	path := "/products/category/" + url.PathEscape(category)
	if err := c.getJSON(ctx, path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct 按 ID 获取单个商品
func (c *Client) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	body, err := c.get(ctx, fmt.Sprintf("/products/%d", id))
	if err != nil {
		return nil, err
	}
	// 目录服务对未知 ID 返回空响应体而不是 404
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrProductNotFound
	}
	var product models.Product
	if err := json.Unmarshal(trimmed, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if product.ID == 0 {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Related 获取同分类的相关商品（排除自身，上限 4 个）
func (c *Client) Related(ctx context.Context, product *models.Product) ([]models.Product, error) {
	if product == nil || strings.TrimSpace(product.Category) == "" {
		return nil, nil
	}
	candidates, err := c.ListByCategory(ctx, product.Category)
	if err != nil {
		return nil, err
	}
	related := make([]models.Product, 0, constants.MaxRelatedProducts)
	for _, candidate := range candidates {
		if candidate.ID == product.ID {
			continue
		}
		related = append(related, candidate)
		if len(related) == constants.MaxRelatedProducts {
			break
		}
	}
	return related, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return body, nil
}
