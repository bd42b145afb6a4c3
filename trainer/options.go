// Package trainer 实现线性分类训练器（随机对偶坐标上升，SDCA）。
package trainer

import (
	"go.uber.org/zap"
)

// Options 是 SDCA 训练器的配置。零值字段在训练时取默认值。
type Options struct {
	LabelColumn   string
	FeatureColumn string

	// NumThreads 是多分类训练时并发训练的类别数上限，默认 1。
	NumThreads int
	// ConvergenceTolerance 是相对对偶间隙阈值，默认 0.1。
	ConvergenceTolerance float64
	// MaxIterations 是最大迭代轮数（遍历数据的次数），默认 100。
	MaxIterations int
	// L2Const 是 L2 正则系数，0 表示按样本数自动选择。
	L2Const float64
	// Seed 控制样本遍历顺序。
	Seed int64

	DisableShuffle       bool
	DisableNormalization bool

	Logger *zap.Logger
}

const (
	defaultLabelColumn   = "Label"
	defaultFeatureColumn = "Features"
	defaultTolerance     = 0.1
	defaultMaxIterations = 100
)

func (o Options) withDefaults() Options {
	if o.LabelColumn == "" {
		o.LabelColumn = defaultLabelColumn
	}
	if o.FeatureColumn == "" {
		o.FeatureColumn = defaultFeatureColumn
	}
	if o.NumThreads <= 0 {
		o.NumThreads = 1
	}
	if o.ConvergenceTolerance <= 0 {
		o.ConvergenceTolerance = defaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// autoL2 按样本数选择正则系数：1/n，限制在 [1e-4, 1e-2]。
func autoL2(n int) float64 {
	l2 := 1 / float64(n)
	if l2 < 1e-4 {
		return 1e-4
	}
	if l2 > 1e-2 {
		return 1e-2
	}
	return l2
}

// SetLogger 设置训练日志输出，配置驱动构建的训练器通过它注入 logger。
func (s *SdcaBinary) SetLogger(l *zap.Logger) { s.Options.Logger = l }

// SetLogger 同 SdcaBinary.SetLogger。
func (s *SdcaMulticlass) SetLogger(l *zap.Logger) { s.Options.Logger = l }
