package feature

import (
	"context"
	"encoding/json"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
	"github.com/rushteam/predbench/pkg/dsl"
)

const typeFilter = "transform.filter"

func init() {
	pipeline.RegisterDecoder(typeFilter, func(raw json.RawMessage) (pipeline.Transformer, error) {
		f := &RowFilter{}
		if err := json.Unmarshal(raw, f); err != nil {
			return nil, err
		}
		if err := f.compile(); err != nil {
			return nil, err
		}
		return f, nil
	})
}

// RowFilter 按 CEL 表达式过滤训练数据中的行。
// 单行预测路径上它是恒等变换：预测的输入行总会得到输出。
type RowFilter struct {
	Expr string `json:"expr"`

	prg *dsl.RowExpr
}

// NewRowFilter 创建行过滤变换。
func NewRowFilter(expr string) *RowFilter {
	return &RowFilter{Expr: expr}
}

func (f *RowFilter) Name() string        { return typeFilter }
func (f *RowFilter) TypeName() string    { return typeFilter }
func (f *RowFilter) Kind() pipeline.Kind { return pipeline.KindFilter }

func (f *RowFilter) compile() error {
	if f.prg != nil {
		return nil
	}
	prg, err := dsl.Compile(f.Expr)
	if err != nil {
		return core.WrapError(core.ModulePipeline, core.ErrorCodeInvalidInput, err, "filter %q", f.Expr)
	}
	f.prg = prg
	return nil
}

// Fit 只校验表达式能编译。
func (f *RowFilter) Fit(_ context.Context, _ *core.Table) (pipeline.Transformer, error) {
	if err := f.compile(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RowFilter) Bind(in *core.Schema) (*core.Schema, pipeline.RowFunc, error) {
	return in, func(row core.Row) (core.Row, error) { return row, nil }, nil
}

// Transform 保留表达式为 true 的行。
func (f *RowFilter) Transform(ctx context.Context, t *core.Table) (*core.Table, error) {
	if err := f.compile(); err != nil {
		return nil, err
	}
	rows := make([]core.Row, 0, len(t.Rows))
	for i, row := range t.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		keep, err := f.prg.Evaluate(t.Schema, row)
		if err != nil {
			return nil, core.WrapError(core.ModulePipeline, core.ErrorCodeInvalidInput, err, "filter row %d", i)
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return core.NewTable(t.Schema, rows), nil
}
