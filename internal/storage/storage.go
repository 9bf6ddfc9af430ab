package storage

import "context"

// KV 持久化键值存储接口。
// 存储布局固定为两个键（token / cart），后端可替换：
// sqlite/postgres（gorm 表）或 redis。
type KV interface {
	// Get 读取键值；键不存在时返回 (nil, false, nil)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set 写入键值（覆盖）
	Set(ctx context.Context, key string, value []byte) error
	// Delete 删除键；键不存在不报错
	Delete(ctx context.Context, key string) error
}
