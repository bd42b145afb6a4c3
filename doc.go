// Package predbench 是一个 ML 预测延迟基准工具（Prediction Bench）。
//
// 设计要点：
// - Config-first: pipeline 由 YAML 描述（数据读取 → 特征变换 → SDCA 训练），见 benchmarks/pipelines.yaml
// - Fit once, predict many: 训练在 Setup 中完成一次，基准只计时单行 Predict
// - 可持久化: 拟合好的变换链可序列化到内存或 Redis，重复运行时直接复用
package predbench

import "github.com/rushteam/predbench/pipeline"

// 轻量 facade：便于用户直接 import "predbench" 使用核心抽象。
type Estimator = pipeline.Estimator
type Transformer = pipeline.Transformer
type TransformerChain = pipeline.TransformerChain
type Kind = pipeline.Kind

const (
	KindTransform = pipeline.KindTransform
	KindFilter    = pipeline.KindFilter
	KindPredictor = pipeline.KindPredictor
	KindChain     = pipeline.KindChain
)
