package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/data"
)

// File 是 pipeline 配置文件的顶层结构（支持 YAML/JSON），可包含多条 pipeline。
type File struct {
	Pipelines []Config `yaml:"pipelines" json:"pipelines"`
}

// Lookup 按名称查找 pipeline 配置。
func (f *File) Lookup(name string) (*Config, error) {
	for i := range f.Pipelines {
		if f.Pipelines[i].Name == name {
			return &f.Pipelines[i], nil
		}
	}
	return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeNotFound, "pipeline %q not defined", name)
}

// Config 是单条 Pipeline 的配置：数据集、读取 schema、估计器链。
type Config struct {
	Name    string       `yaml:"name" json:"name"`
	Dataset string       `yaml:"dataset" json:"dataset"`
	Loader  LoaderConfig `yaml:"loader" json:"loader"`
	Nodes   []NodeConfig `yaml:"nodes" json:"nodes"`
}

// LoaderConfig 描述 TextLoader 的列声明。
type LoaderConfig struct {
	HasHeader bool           `yaml:"has_header" json:"has_header"`
	Separator string         `yaml:"separator" json:"separator"` // "\t" / "," / "tab" / "comma" / "space"，空为自动识别
	Columns   []ColumnConfig `yaml:"columns" json:"columns"`
}

// ColumnConfig 是单列声明：index 与 range 二选一。
type ColumnConfig struct {
	Name  string      `yaml:"name" json:"name"`
	Kind  string      `yaml:"kind" json:"kind"` // R4 / BL / TX
	Index int         `yaml:"index" json:"index"`
	Range *data.Range `yaml:"range,omitempty" json:"range,omitempty"`
}

// NodeConfig 是单个估计器的配置。
type NodeConfig struct {
	Type   string                 `yaml:"type" json:"type"`     // transform.concat / trainer.sdca.binary 等
	Config map[string]interface{} `yaml:"config" json:"config"` // 估计器特定配置
}

// LoadFromYAML 从 YAML 文件加载 pipeline 配置。
func LoadFromYAML(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseYAML(raw)
}

// ParseYAML 解析 YAML 内容。
func ParseYAML(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &f, nil
}

// LoadFromJSON 从 JSON 文件加载 pipeline 配置。
func LoadFromJSON(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &f, nil
}

// BuildLoader 根据配置构建 TextLoader。
func (c *Config) BuildLoader() (*data.TextLoader, error) {
	sep, err := parseSeparator(c.Loader.Separator)
	if err != nil {
		return nil, err
	}
	cols := make([]data.LoaderColumn, 0, len(c.Loader.Columns))
	for _, cc := range c.Loader.Columns {
		kind, err := core.ParseDataKind(cc.Kind)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", cc.Name, err)
		}
		col := data.LoaderColumn{Name: cc.Name, Kind: kind, Index: cc.Index}
		if cc.Range != nil {
			r := *cc.Range
			col.Range = &r
			col.Kind = core.KindVector
		}
		cols = append(cols, col)
	}
	loader := &data.TextLoader{Columns: cols, HasHeader: c.Loader.HasHeader, Separator: sep}
	if _, err := loader.Schema(); err != nil {
		return nil, err
	}
	return loader, nil
}

// BuildChain 根据配置构建估计器链（需要 EstimatorFactory 注册构建器）。
// 注意：factory 应该在独立的 config 包中，避免循环依赖。
func (c *Config) BuildChain(factory *EstimatorFactory) (*EstimatorChain, error) {
	if len(c.Nodes) == 0 {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "pipeline %q has no nodes", c.Name)
	}
	estimators := make([]Estimator, 0, len(c.Nodes))
	for _, nc := range c.Nodes {
		e, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", nc.Type, err)
		}
		estimators = append(estimators, e)
	}
	return NewEstimatorChain(estimators...), nil
}

func parseSeparator(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "space":
		return ' ', nil
	case "semicolon":
		return ';', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return r, nil
}

// NodeBuilder 根据 config 构建估计器。
type NodeBuilder func(map[string]interface{}) (Estimator, error)

// EstimatorFactory 用于根据配置构建 Estimator 实例。
type EstimatorFactory struct {
	builders map[string]NodeBuilder
}

func NewEstimatorFactory() *EstimatorFactory {
	return &EstimatorFactory{
		builders: make(map[string]NodeBuilder),
	}
}

// Register 注册估计器构建器。
func (f *EstimatorFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Build 根据类型和配置构建估计器。
func (f *EstimatorFactory) Build(nodeType string, config map[string]interface{}) (Estimator, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeNotSupported, "unknown node type: %s", nodeType)
	}
	return builder(config)
}
