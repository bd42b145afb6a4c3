package feature

import (
	"context"
	"encoding/json"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

const typeConcat = "transform.concat"

func init() {
	pipeline.RegisterDecoder(typeConcat, func(raw json.RawMessage) (pipeline.Transformer, error) {
		c := &Concatenate{}
		if err := json.Unmarshal(raw, c); err != nil {
			return nil, err
		}
		return c, nil
	})
}

// Concatenate 把若干数值列/向量列按顺序拼接成一个向量列。
// 无状态：Fit 直接返回自身。
type Concatenate struct {
	Output string   `json:"output"`
	Inputs []string `json:"inputs"`
}

// NewConcatenate 创建拼接变换。
func NewConcatenate(output string, inputs ...string) *Concatenate {
	return &Concatenate{Output: output, Inputs: inputs}
}

func (c *Concatenate) Name() string        { return typeConcat }
func (c *Concatenate) TypeName() string    { return typeConcat }
func (c *Concatenate) Kind() pipeline.Kind { return pipeline.KindTransform }

func (c *Concatenate) Fit(_ context.Context, t *core.Table) (pipeline.Transformer, error) {
	if _, _, err := c.Bind(t.Schema); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Concatenate) Bind(in *core.Schema) (*core.Schema, pipeline.RowFunc, error) {
	if c.Output == "" || len(c.Inputs) == 0 {
		return nil, nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "concat: output and inputs are required")
	}
	idx := make([]int, len(c.Inputs))
	isVec := make([]bool, len(c.Inputs))
	size := 0
	for i, name := range c.Inputs {
		pos, col, err := in.Lookup(name, core.KindNumber, core.KindVector)
		if err != nil {
			return nil, nil, err
		}
		idx[i] = pos
		if col.Kind == core.KindVector {
			isVec[i] = true
			size += col.Size
		} else {
			size++
		}
	}
	out := in.Append(core.Column{Name: c.Output, Kind: core.KindVector, Size: size})
	return out, func(row core.Row) (core.Row, error) {
		vec := make([]float64, 0, size)
		for i, pos := range idx {
			if isVec[i] {
				vec = append(vec, row[pos].Vec...)
			} else {
				vec = append(vec, row[pos].Num)
			}
		}
		return pipeline.AppendColumn(row, core.Vector(vec)), nil
	}, nil
}
