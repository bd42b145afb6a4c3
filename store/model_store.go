package store

import (
	"context"
	"time"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

// ModelStore 在任意 core.Store 上按名称保存/读取拟合好的变换链。
// key = Prefix + name，值为 pipeline.MarshalChain 的 JSON。
type ModelStore struct {
	Store  core.Store
	Prefix string
	// TTL 为 0 表示不过期。
	TTL time.Duration
}

// NewModelStore 创建模型存储，prefix 为空时使用 "predbench:model:"。
func NewModelStore(s core.Store, prefix string, ttl time.Duration) *ModelStore {
	if prefix == "" {
		prefix = "predbench:model:"
	}
	return &ModelStore{Store: s, Prefix: prefix, TTL: ttl}
}

func (m *ModelStore) key(name string) string { return m.Prefix + name }

// Save 序列化并写入模型。链中所有变换必须可序列化。
func (m *ModelStore) Save(ctx context.Context, name string, chain *pipeline.TransformerChain) error {
	raw, err := pipeline.MarshalChain(chain)
	if err != nil {
		return err
	}
	if err := m.Store.Set(ctx, m.key(name), raw, m.TTL); err != nil {
		return core.WrapError(core.ModuleStore, core.ErrorCodeUnavailable, err, "store: save model %s to %s", name, m.Store.Name())
	}
	return nil
}

// Load 读取并还原模型；不存在时返回 core.ErrStoreNotFound。
func (m *ModelStore) Load(ctx context.Context, name string) (*pipeline.TransformerChain, error) {
	raw, err := m.Store.Get(ctx, m.key(name))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.ErrStoreNotFound
		}
		return nil, core.WrapError(core.ModuleStore, core.ErrorCodeUnavailable, err, "store: load model %s from %s", name, m.Store.Name())
	}
	return pipeline.UnmarshalChain(raw)
}

// Delete 删除模型。
func (m *ModelStore) Delete(ctx context.Context, name string) error {
	return m.Store.Delete(ctx, m.key(name))
}
