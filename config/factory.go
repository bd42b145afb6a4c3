package config

import (
	"fmt"

	"github.com/rushteam/predbench/data"
	"github.com/rushteam/predbench/pipeline"
)

// Pipeline 是由配置构建出的未拟合 pipeline：数据读取器 + 估计器链。
type Pipeline struct {
	Name    string
	Dataset string
	Loader  *data.TextLoader
	Chain   *pipeline.EstimatorChain
}

// Build 校验并构建一条 pipeline，使用 DefaultFactory 中注册的估计器。
func Build(cfg *pipeline.Config) (*Pipeline, error) {
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Dataset == "" {
		return nil, fmt.Errorf("pipeline %s: dataset is required", cfg.Name)
	}
	loader, err := cfg.BuildLoader()
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", cfg.Name, err)
	}
	chain, err := cfg.BuildChain(DefaultFactory())
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", cfg.Name, err)
	}
	return &Pipeline{Name: cfg.Name, Dataset: cfg.Dataset, Loader: loader, Chain: chain}, nil
}

// BuildAll 按文件中的顺序构建所有 pipeline。
func BuildAll(f *pipeline.File) ([]*Pipeline, error) {
	out := make([]*Pipeline, 0, len(f.Pipelines))
	for i := range f.Pipelines {
		p, err := Build(&f.Pipelines[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
