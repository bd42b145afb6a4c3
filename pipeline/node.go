package pipeline

import (
	"context"

	"github.com/rushteam/predbench/core"
)

// Kind 用于标记变换类型，方便日志/序列化/编排。
type Kind string

const (
	KindTransform Kind = "transform" // 列变换：拼接、文本特征化、归一化
	KindFilter    Kind = "filter"    // 行过滤：只作用于整表
	KindPredictor Kind = "predictor" // 预测器：训练器产出的模型
	KindChain     Kind = "chain"     // 变换链
)

// RowFunc 把输入行映射为输出行（输出行与 Bind 返回的 schema 对齐）。
type RowFunc func(in core.Row) (core.Row, error)

// Transformer 是已拟合的变换，也是单行预测路径的最小单元。
// Bind 在构建预测引擎时调用一次，所有 schema 校验都在这里完成，
// 返回的 RowFunc 在热路径上只做计算。
type Transformer interface {
	Name() string
	Kind() Kind
	Bind(in *core.Schema) (*core.Schema, RowFunc, error)
}

// TableTransformer 是可选接口：改变行集合的变换（如过滤）需要实现整表变换。
type TableTransformer interface {
	Transformer
	Transform(ctx context.Context, t *core.Table) (*core.Table, error)
}

// Estimator 在数据上拟合出 Transformer。
type Estimator interface {
	Name() string
	Fit(ctx context.Context, t *core.Table) (Transformer, error)
}

// Apply 把变换应用到整张表。
func Apply(ctx context.Context, tr Transformer, t *core.Table) (*core.Table, error) {
	if tt, ok := tr.(TableTransformer); ok {
		return tt.Transform(ctx, t)
	}
	schema, fn, err := tr.Bind(t.Schema)
	if err != nil {
		return nil, err
	}
	rows := make([]core.Row, len(t.Rows))
	for i, row := range t.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out, err := fn(row)
		if err != nil {
			return nil, err
		}
		rows[i] = out
	}
	return core.NewTable(schema, rows), nil
}

// AppendColumn 返回追加了一个值的新行（不修改输入行）。
func AppendColumn(in core.Row, v core.Value) core.Row {
	out := make(core.Row, len(in), len(in)+1)
	copy(out, in)
	return append(out, v)
}
