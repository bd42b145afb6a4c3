package core

import (
	"context"
	"time"
)

// Store 是模型存储使用的 key-value 后端。
// 实现必须并发安全；store.MemoryStore 与 store.RedisStore 实现此接口。
type Store interface {
	// Name 返回后端名称，用于日志
	Name() string

	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入 value；ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error
}

// ErrStoreNotFound 表示 key 不存在或已过期。
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 判断 err 是否为存储模块的 NOT_FOUND。
func IsStoreNotFound(err error) bool {
	d := GetDomainError(err)
	return d != nil && d.Module == ModuleStore && d.Code == ErrorCodeNotFound
}
