// Package engine 提供单行同步预测入口。
//
// 使用方式：
//
//	eng, err := engine.CreatePredictionEngine(model, in, out)
//	pred, err := eng.Predict(example)
//
// 所有 schema 校验在 CreatePredictionEngine 中完成一次，Predict 只做计算。
package engine

import (
	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

// InputBinding 描述输入类型 T 如何映射为一行数据。
// Row 返回的行必须与 Schema 对齐。
type InputBinding[T any] struct {
	Schema *core.Schema
	Row    func(in T) (core.Row, error)
}

// OutputBinding 从模型输出行中读取结果类型 T。
// 读取的切片应当拷贝，RowView.Vector 已经返回副本。
type OutputBinding[T any] func(out core.RowView) (T, error)

// PredictionEngine 对单个输入执行一次前向计算。
// 不是并发安全的：每个 goroutine 应使用自己的引擎。
type PredictionEngine[TIn, TOut any] struct {
	model     pipeline.Transformer
	inSchema  *core.Schema
	outSchema *core.Schema
	fn        pipeline.RowFunc
	toRow     func(TIn) (core.Row, error)
	fromRow   OutputBinding[TOut]
}

// CreatePredictionEngine 把已拟合模型绑定到输入输出类型上。
func CreatePredictionEngine[TIn, TOut any](model pipeline.Transformer, in InputBinding[TIn], out OutputBinding[TOut]) (*PredictionEngine[TIn, TOut], error) {
	if model == nil {
		return nil, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: model is nil")
	}
	if in.Schema == nil || in.Row == nil {
		return nil, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: input binding is incomplete")
	}
	if out == nil {
		return nil, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: output binding is nil")
	}
	schema, fn, err := model.Bind(in.Schema)
	if err != nil {
		return nil, core.WrapError(core.ModuleEngine, core.ErrorCodeInvalidInput, err,
			"engine: bind %s to input schema %s", model.Name(), in.Schema)
	}
	return &PredictionEngine[TIn, TOut]{
		model:     model,
		inSchema:  in.Schema,
		outSchema: schema,
		fn:        fn,
		toRow:     in.Row,
		fromRow:   out,
	}, nil
}

// OutputSchema 返回模型输出行的 schema。
func (e *PredictionEngine[TIn, TOut]) OutputSchema() *core.Schema { return e.outSchema }

// Model 返回引擎使用的模型。
func (e *PredictionEngine[TIn, TOut]) Model() pipeline.Transformer { return e.model }

// Predict 对一个输入做预测。
func (e *PredictionEngine[TIn, TOut]) Predict(in TIn) (TOut, error) {
	var zero TOut
	row, err := e.toRow(in)
	if err != nil {
		return zero, core.WrapError(core.ModuleEngine, core.ErrorCodeInvalidInput, err, "engine: input row")
	}
	if len(row) != e.inSchema.Len() {
		return zero, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: input row has %d values, schema has %d columns", len(row), e.inSchema.Len())
	}
	res, err := e.fn(row)
	if err != nil {
		return zero, err
	}
	return e.fromRow(core.RowView{Schema: e.outSchema, Row: res})
}
