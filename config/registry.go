package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/predbench/config/builders"，
// 以触发内置估计器（transform.*、trainer.*）的 init 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Estimator。
type NodeBuilder = pipeline.NodeBuilder

// trainerPrefix 标记产出预测器的节点类型。
const trainerPrefix = "trainer."

type registry struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

var global = &registry{builders: make(map[string]NodeBuilder)}

// Register 注册一种估计器的构建逻辑，通常在组件包的 init 中调用。
// 同名类型后注册的覆盖先注册的。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	global.builders[typeName] = builder
}

// SupportedTypes 返回已注册的类型（排序）。
func SupportedTypes() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	types := make([]string, 0, len(global.builders))
	for t := range global.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回当前注册表的快照。
func DefaultFactory() *pipeline.EstimatorFactory {
	global.mu.RLock()
	defer global.mu.RUnlock()
	f := pipeline.NewEstimatorFactory()
	for typeName, builder := range global.builders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 校验节点类型均已注册，且 pipeline 以唯一的 trainer.* 节点结尾。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	global.mu.RLock()
	unsupported := ""
	for _, nc := range cfg.Nodes {
		if _, ok := global.builders[nc.Type]; !ok {
			unsupported = nc.Type
			break
		}
	}
	global.mu.RUnlock()
	if unsupported != "" {
		return core.Errorf(core.ModulePipeline, core.ErrorCodeNotSupported,
			"pipeline %s: unsupported node type %q (supported: %s)", cfg.Name, unsupported, strings.Join(SupportedTypes(), ", "))
	}

	trainers := 0
	for i, nc := range cfg.Nodes {
		if !strings.HasPrefix(nc.Type, trainerPrefix) {
			continue
		}
		trainers++
		if i != len(cfg.Nodes)-1 {
			return core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput,
				"pipeline %s: trainer %s must be the last node", cfg.Name, nc.Type)
		}
	}
	if trainers != 1 {
		return core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput,
			"pipeline %s: expected exactly one trainer node, got %d", cfg.Name, trainers)
	}
	return nil
}
