package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/predbench/core"
)

// RedisOptions 是 Redis 连接参数。
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// DialTimeout 为 0 时使用 3s。
	DialTimeout time.Duration
}

// RedisStore 是 Redis 实现的 Store，用于在多次运行之间共享已训练模型。
type RedisStore struct {
	client *redis.Client
	addr   string
}

// NewRedisStore 连接 Redis 并 Ping 一次，连接失败返回 UNAVAILABLE。
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, core.Errorf(core.ModuleStore, core.ErrorCodeInvalidInput, "store: redis addr is required")
	}
	dial := opts.DialTimeout
	if dial <= 0 {
		dial = 3 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dial,
		MaxRetries:  1,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.WrapError(core.ModuleStore, core.ErrorCodeUnavailable, err, "store: redis %s", opts.Addr)
	}
	return &RedisStore{client: client, addr: opts.Addr}, nil
}

func (r *RedisStore) Name() string { return "redis://" + r.addr }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) Close() error { return r.client.Close() }

var _ core.Store = (*RedisStore)(nil)
