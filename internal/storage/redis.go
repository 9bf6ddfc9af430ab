package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisKV redis 实现的键值存储
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV 创建 redis 键值存储
func NewRedisKV(cfg config.RedisConfig) *RedisKV {
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "sf"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisKV{client: client, prefix: prefix}
}

// Get 读取键值
func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set 写入键值（不设置过期：快照常驻）
func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.buildKey(key), value, 0).Err()
}

// Delete 删除键
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.buildKey(key)).Err()
}

func (s *RedisKV) buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.prefix
	}
	return fmt.Sprintf("%s:%s", s.prefix, trimmed)
}
