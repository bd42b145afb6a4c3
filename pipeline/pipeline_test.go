package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rushteam/predbench/core"
)

// doubler 把数值列 x 乘 2 追加为 y，用来观察链的组合顺序。
type doubler struct {
	In, Out string
}

func (d *doubler) Name() string     { return "test.double" }
func (d *doubler) TypeName() string { return "test.double" }
func (d *doubler) Kind() Kind       { return KindTransform }

func (d *doubler) Fit(context.Context, *core.Table) (Transformer, error) { return d, nil }

func (d *doubler) Bind(in *core.Schema) (*core.Schema, RowFunc, error) {
	pos, _, err := in.Lookup(d.In, core.KindNumber)
	if err != nil {
		return nil, nil, err
	}
	out := in.Append(core.Column{Name: d.Out, Kind: core.KindNumber})
	return out, func(row core.Row) (core.Row, error) {
		return AppendColumn(row, core.Number(row[pos].Num*2)), nil
	}, nil
}

// countingEstimator 记录 Fit 时看到的行数和列。
type countingEstimator struct {
	sawRows    int
	sawColumns int
}

func (c *countingEstimator) Name() string { return "test.count" }

func (c *countingEstimator) Fit(_ context.Context, t *core.Table) (Transformer, error) {
	c.sawRows = t.Len()
	c.sawColumns = t.Schema.Len()
	return &doubler{In: "x", Out: "z"}, nil
}

func numbers(vals ...float64) *core.Table {
	schema := core.NewSchema(core.Column{Name: "x", Kind: core.KindNumber})
	rows := make([]core.Row, len(vals))
	for i, v := range vals {
		rows[i] = core.Row{core.Number(v)}
	}
	return core.NewTable(schema, rows)
}

func TestEstimatorChain_FitChain(t *testing.T) {
	last := &countingEstimator{}
	chain := NewEstimatorChain(&doubler{In: "x", Out: "y"}).Append(last)

	model, err := chain.FitChain(context.Background(), numbers(1, 2, 3))
	if err != nil {
		t.Fatalf("FitChain: %v", err)
	}
	if last.sawRows != 3 || last.sawColumns != 2 {
		t.Errorf("last estimator saw %d rows / %d columns, want 3 / 2", last.sawRows, last.sawColumns)
	}
	if len(model.Transformers) != 2 {
		t.Fatalf("transformers = %d, want 2", len(model.Transformers))
	}

	schema, fn, err := model.Bind(numbers().Schema)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out, err := fn(core.Row{core.Number(5)})
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	view := core.RowView{Schema: schema, Row: out}
	if y, _ := view.Number("y"); y != 10 {
		t.Errorf("y = %v, want 10", y)
	}
	if z, _ := view.Number("z"); z != 10 {
		t.Errorf("z = %v, want 10", z)
	}

	applied, err := model.Transform(context.Background(), numbers(1))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if applied.Schema.Len() != 3 {
		t.Errorf("applied schema = %s", applied.Schema)
	}
}

func TestEstimatorChain_AppendCopies(t *testing.T) {
	base := NewEstimatorChain(&doubler{In: "x", Out: "y"})
	_ = base.Append(&countingEstimator{})
	if len(base.Estimators) != 1 {
		t.Errorf("Append modified the receiver")
	}
}

func TestEstimatorChain_Errors(t *testing.T) {
	if _, err := NewEstimatorChain().FitChain(context.Background(), numbers(1)); !core.IsInvalidInput(err) {
		t.Errorf("empty chain err = %v", err)
	}
	chain := NewEstimatorChain(&doubler{In: "x", Out: "y"})
	if _, err := chain.FitChain(context.Background(), numbers()); !core.IsInvalidInput(err) {
		t.Errorf("empty table err = %v", err)
	}
	bad := NewEstimatorChain(&doubler{In: "missing", Out: "y"}, &countingEstimator{})
	if _, err := bad.FitChain(context.Background(), numbers(1)); !core.IsInvalidInput(err) {
		t.Errorf("missing column err = %v", err)
	}
}

func TestChainPersistence(t *testing.T) {
	RegisterDecoder("test.double", func(raw json.RawMessage) (Transformer, error) {
		d := &doubler{}
		return d, json.Unmarshal(raw, d)
	})
	chain := &TransformerChain{Transformers: []Transformer{&doubler{In: "x", Out: "y"}}}
	raw, err := MarshalChain(chain)
	if err != nil {
		t.Fatalf("MarshalChain: %v", err)
	}
	back, err := UnmarshalChain(raw)
	if err != nil {
		t.Fatalf("UnmarshalChain: %v", err)
	}
	d, ok := back.LastTransformer().(*doubler)
	if !ok || d.In != "x" || d.Out != "y" {
		t.Errorf("decoded = %#v", back.LastTransformer())
	}

	notPersistable := &TransformerChain{Transformers: []Transformer{mustFit(t, &countingEstimator{})}}
	notPersistable.Transformers = append(notPersistable.Transformers, plainTransformer{})
	if _, err := MarshalChain(notPersistable); !core.IsNotSupported(err) {
		t.Errorf("err = %v, want not supported", err)
	}
	if _, err := UnmarshalChain([]byte(`{"version":1,"stages":[{"type":"unknown"}]}`)); !core.IsNotSupported(err) {
		t.Errorf("unknown stage err = %v", err)
	}
	if _, err := UnmarshalChain([]byte(`{"version":9}`)); !core.IsNotSupported(err) {
		t.Errorf("unknown version err = %v", err)
	}
}

type plainTransformer struct{}

func (plainTransformer) Name() string { return "plain" }
func (plainTransformer) Kind() Kind   { return KindTransform }
func (plainTransformer) Bind(in *core.Schema) (*core.Schema, RowFunc, error) {
	return in, func(r core.Row) (core.Row, error) { return r, nil }, nil
}

func mustFit(t *testing.T, e Estimator) Transformer {
	t.Helper()
	tr, err := e.Fit(context.Background(), numbers(1))
	if err != nil {
		t.Fatal(err)
	}
	return tr
}
