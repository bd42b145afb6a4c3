package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/predbench/core"
)

// EstimatorChain 是 Pipeline 的核心抽象：把变换和训练器串成一条可拟合的链。
// Fit 时每个 Estimator 在上一个 Transformer 的输出上拟合。
type EstimatorChain struct {
	Estimators []Estimator
}

// NewEstimatorChain 创建估计器链。
func NewEstimatorChain(estimators ...Estimator) *EstimatorChain {
	return &EstimatorChain{Estimators: estimators}
}

// Append 追加估计器，返回新的链（原链不变）。
func (c *EstimatorChain) Append(e Estimator) *EstimatorChain {
	next := make([]Estimator, 0, len(c.Estimators)+1)
	next = append(next, c.Estimators...)
	next = append(next, e)
	return &EstimatorChain{Estimators: next}
}

func (c *EstimatorChain) Name() string { return "chain" }

// Fit 依次拟合所有估计器，返回拟合好的变换链。
func (c *EstimatorChain) Fit(ctx context.Context, t *core.Table) (Transformer, error) {
	return c.FitChain(ctx, t)
}

// FitChain 与 Fit 相同，但返回具体类型。
func (c *EstimatorChain) FitChain(ctx context.Context, t *core.Table) (*TransformerChain, error) {
	if len(c.Estimators) == 0 {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "pipeline: empty estimator chain")
	}
	if t.Len() == 0 {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "pipeline: empty training table")
	}
	transformers := make([]Transformer, 0, len(c.Estimators))
	cur := t
	for i, e := range c.Estimators {
		tr, err := e.Fit(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("fit %s: %w", e.Name(), err)
		}
		transformers = append(transformers, tr)
		// 最后一个变换的输出只在预测时需要
		if i == len(c.Estimators)-1 {
			break
		}
		cur, err = Apply(ctx, tr, cur)
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", tr.Name(), err)
		}
	}
	return &TransformerChain{Transformers: transformers}, nil
}

// TransformerChain 是拟合后的变换链，本身也是 Transformer。
type TransformerChain struct {
	Transformers []Transformer
}

func (c *TransformerChain) Name() string { return "chain" }
func (c *TransformerChain) Kind() Kind   { return KindChain }

// Bind 依次绑定所有变换，组合出单行函数。
func (c *TransformerChain) Bind(in *core.Schema) (*core.Schema, RowFunc, error) {
	schema := in
	fns := make([]RowFunc, 0, len(c.Transformers))
	for _, tr := range c.Transformers {
		out, fn, err := tr.Bind(schema)
		if err != nil {
			return nil, nil, fmt.Errorf("bind %s: %w", tr.Name(), err)
		}
		schema = out
		fns = append(fns, fn)
	}
	return schema, func(row core.Row) (core.Row, error) {
		var err error
		for _, fn := range fns {
			row, err = fn(row)
			if err != nil {
				return nil, err
			}
		}
		return row, nil
	}, nil
}

// Transform 依次把变换应用到整表（过滤类变换会改变行数）。
func (c *TransformerChain) Transform(ctx context.Context, t *core.Table) (*core.Table, error) {
	cur := t
	for _, tr := range c.Transformers {
		next, err := Apply(ctx, tr, cur)
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", tr.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// LastTransformer 返回链上最后一个变换（通常是预测器）。
func (c *TransformerChain) LastTransformer() Transformer {
	if len(c.Transformers) == 0 {
		return nil
	}
	return c.Transformers[len(c.Transformers)-1]
}
