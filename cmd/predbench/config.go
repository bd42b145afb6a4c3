package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/predbench/pkg/logger"
)

// RunConfig 是一次基准运行的配置，可以来自 YAML 文件，命令行参数覆盖文件中的值。
type RunConfig struct {
	// DataDir 为空时从当前目录向上查找 testdata。
	DataDir string `yaml:"data_dir"`
	// Pipelines 是自定义 pipeline 定义文件，为空时使用内置定义。
	Pipelines  string        `yaml:"pipelines"`
	Warmup     int           `yaml:"warmup"`
	Iterations int           `yaml:"iterations"`
	MinTime    time.Duration `yaml:"min_time"`
	Only       []string      `yaml:"only"`
	Format     string        `yaml:"format"` // markdown / json
	Out        string        `yaml:"out"`
	SQLite     string        `yaml:"sqlite"`
	RunID      string        `yaml:"run_id"`

	Log   logger.Config `yaml:"log"`
	Redis RedisConfig   `yaml:"redis"`
}

// RedisConfig 配置模型缓存；Addr 为空时每次运行都重新训练。
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"` // 如 "24h"，0 表示不过期
}

func defaultRunConfig() RunConfig {
	return RunConfig{
		Warmup:     100,
		Iterations: 10000,
		Format:     "markdown",
		Log:        logger.Config{Level: "info"},
	}
}

// loadRunConfig 在默认值之上叠加 YAML 文件。
func loadRunConfig(path string) (RunConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

func (c *RunConfig) validate() error {
	switch c.Format {
	case "markdown", "json":
	default:
		return fmt.Errorf("unknown format %q (markdown|json)", c.Format)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("warmup must not be negative, got %d", c.Warmup)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
