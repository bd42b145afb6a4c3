package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rushteam/predbench/core"
)

// DefaultDataDir 是测试数据目录名。
const DefaultDataDir = "testdata"

// Catalog 把逻辑数据集名映射为磁盘路径，并缓存已读取的表。
// 缓存的 Table 是共享只读的，调用方不能修改。
type Catalog struct {
	Root  string
	cache *lru.Cache[string, *core.Table]
}

// NewCatalog 创建目录，cacheSize <= 0 时使用 16。
func NewCatalog(root string, cacheSize int) (*Catalog, error) {
	if cacheSize <= 0 {
		cacheSize = 16
	}
	cache, err := lru.New[string, *core.Table](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create table cache: %w", err)
	}
	return &Catalog{Root: root, cache: cache}, nil
}

// Path 返回数据集的磁盘路径。
func (c *Catalog) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Root, name)
}

// Load 读取数据集，相同路径 + 相同 loader 配置只读一次。
func (c *Catalog) Load(ctx context.Context, name string, loader *TextLoader) (*core.Table, error) {
	path := c.Path(name)
	key := path + "|" + loader.Signature()
	if t, ok := c.cache.Get(key); ok {
		return t, nil
	}
	t, err := loader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, t)
	return t, nil
}

// Cached 返回当前缓存的表数量。
func (c *Catalog) Cached() int { return c.cache.Len() }

// Purge 清空缓存。
func (c *Catalog) Purge() { c.cache.Purge() }

// FindDataDir 从当前工作目录逐级向上查找名为 dirName 的目录。
func FindDataDir(dirName string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findUp(wd, dirName)
}

func findUp(start, dirName string) (string, error) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", core.Errorf(core.ModuleData, core.ErrorCodeNotFound, "data: directory %q not found above %s", dirName, start)
		}
		dir = parent
	}
}
