package model

import (
	"math"

	"github.com/rushteam/predbench/core"
)

// BinaryPredictor 是线性二分类模型（逻辑回归形式）。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * Feature_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// Score 输出 z（未校准的 margin），Probability 输出 P。
type BinaryPredictor struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (m *BinaryPredictor) Name() string { return "linear.binary" }

// Margin 计算 z = w·x + b。
func (m *BinaryPredictor) Margin(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"linear: got %d features, model has %d", len(features), len(m.Weights))
	}
	return dot(m.Weights, features) + m.Bias, nil
}

// Probability 返回正类概率。
func (m *BinaryPredictor) Probability(features []float64) (float64, error) {
	z, err := m.Margin(features)
	if err != nil {
		return 0, err
	}
	return Sigmoid(z), nil
}

// MulticlassPredictor 是线性多分类模型：每个类别一组权重，Softmax 输出各类概率。
type MulticlassPredictor struct {
	Classes []float64   `json:"classes"` // 类别对应的原始标签值（升序）
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

func (m *MulticlassPredictor) Name() string    { return "linear.multiclass" }
func (m *MulticlassPredictor) NumClasses() int { return len(m.Classes) }

// Validate 检查类别、权重行与偏置数量一致，且每行权重等长。
func (m *MulticlassPredictor) Validate() error {
	k := len(m.Classes)
	if k == 0 {
		return core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "multiclass: model has no classes")
	}
	if len(m.Weights) != k || len(m.Biases) != k {
		return core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput,
			"multiclass: %d classes, %d weight rows, %d biases", k, len(m.Weights), len(m.Biases))
	}
	dims := len(m.Weights[0])
	for i, w := range m.Weights {
		if len(w) != dims {
			return core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput,
				"multiclass: weight row %d has %d values, row 0 has %d", i, len(w), dims)
		}
	}
	return nil
}

// Margins 返回每个类别的线性分数。
func (m *MulticlassPredictor) Margins(features []float64) ([]float64, error) {
	out := make([]float64, len(m.Weights))
	for k, w := range m.Weights {
		if len(features) != len(w) {
			return nil, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput,
				"linear: got %d features, model has %d", len(features), len(w))
		}
		out[k] = dot(w, features) + m.Biases[k]
	}
	return out, nil
}

// Scores 返回 Softmax 后的各类概率，和为 1。
func (m *MulticlassPredictor) Scores(features []float64) ([]float64, error) {
	margins, err := m.Margins(features)
	if err != nil {
		return nil, err
	}
	Softmax(margins)
	return margins, nil
}

// Sigmoid 计算 1 / (1 + exp(-z))，对大 |z| 数值稳定。
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// Softmax 原地把分数转换为概率。
func Softmax(v []float64) {
	if len(v) == 0 {
		return
	}
	max := v[0]
	for _, x := range v[1:] {
		if x > max {
			max = x
		}
	}
	sum := 0.0
	for i, x := range v {
		v[i] = math.Exp(x - max)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}

func dot(w, x []float64) float64 {
	s := 0.0
	for i, v := range x {
		s += w[i] * v
	}
	return s
}

var (
	_ BinaryModel     = (*BinaryPredictor)(nil)
	_ MulticlassModel = (*MulticlassPredictor)(nil)
)
