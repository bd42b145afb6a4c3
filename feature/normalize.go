package feature

import (
	"context"
	"encoding/json"
	"math"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

const typeNormalize = "transform.normalize_minmax"

func init() {
	pipeline.RegisterDecoder(typeNormalize, func(raw json.RawMessage) (pipeline.Transformer, error) {
		n := &NormalizerTransformer{}
		if err := json.Unmarshal(raw, n); err != nil {
			return nil, err
		}
		return n, nil
	})
}

// MinMaxNormalizer 按最大绝对值缩放向量列的每一维，0 保持为 0。
// 缺失值（NaN）在统计时忽略。
type MinMaxNormalizer struct {
	Column string
}

// NewMinMaxNormalizer 创建归一化估计器（原地替换同名列）。
func NewMinMaxNormalizer(column string) *MinMaxNormalizer {
	return &MinMaxNormalizer{Column: column}
}

func (n *MinMaxNormalizer) Name() string { return typeNormalize }

func (n *MinMaxNormalizer) Fit(_ context.Context, t *core.Table) (pipeline.Transformer, error) {
	pos, col, err := t.Schema.Lookup(n.Column, core.KindVector)
	if err != nil {
		return nil, err
	}
	scales := MaxAbsScales(t, pos, col.Size)
	return &NormalizerTransformer{Column: n.Column, Scales: scales}, nil
}

// MaxAbsScales 计算向量列每一维的缩放系数 1/max|x|；全零维度系数为 1。
func MaxAbsScales(t *core.Table, pos, size int) []float64 {
	maxAbs := make([]float64, size)
	for _, row := range t.Rows {
		for j, v := range row[pos].Vec {
			if j >= size || math.IsNaN(v) {
				continue
			}
			if a := math.Abs(v); a > maxAbs[j] {
				maxAbs[j] = a
			}
		}
	}
	scales := make([]float64, size)
	for j, m := range maxAbs {
		if m == 0 {
			scales[j] = 1
		} else {
			scales[j] = 1 / m
		}
	}
	return scales
}

// NormalizerTransformer 是拟合后的归一化变换。
type NormalizerTransformer struct {
	Column string    `json:"column"`
	Scales []float64 `json:"scales"`
}

func (n *NormalizerTransformer) Name() string        { return typeNormalize }
func (n *NormalizerTransformer) TypeName() string    { return typeNormalize }
func (n *NormalizerTransformer) Kind() pipeline.Kind { return pipeline.KindTransform }

func (n *NormalizerTransformer) Bind(in *core.Schema) (*core.Schema, pipeline.RowFunc, error) {
	pos, col, err := in.Lookup(n.Column, core.KindVector)
	if err != nil {
		return nil, nil, err
	}
	if col.Size != len(n.Scales) {
		return nil, nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput,
			"normalize: column %q has size %d, fitted on %d", n.Column, col.Size, len(n.Scales))
	}
	out := in.Append(core.Column{Name: n.Column, Kind: core.KindVector, Size: col.Size})
	return out, func(row core.Row) (core.Row, error) {
		src := row[pos].Vec
		if len(src) != len(n.Scales) {
			return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput,
				"normalize: got %d values, want %d", len(src), len(n.Scales))
		}
		vec := make([]float64, len(src))
		for j, v := range src {
			vec[j] = v * n.Scales[j]
		}
		return pipeline.AppendColumn(row, core.Vector(vec)), nil
	}, nil
}
