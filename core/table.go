package core

import "math"

// Value 是单元格的值，按所在列的 DataKind 取对应字段。
type Value struct {
	Num  float64
	Vec  []float64
	Text string
	Bool bool
}

func Number(v float64) Value    { return Value{Num: v} }
func Vector(v []float64) Value  { return Value{Vec: v} }
func Text(s string) Value       { return Value{Text: s} }
func Bool(b bool) Value         { return Value{Bool: b} }
func Missing() Value            { return Value{Num: math.NaN()} }
func (v Value) IsMissing() bool { return math.IsNaN(v.Num) }

// Row 是与 Schema 对齐的一行数据。
type Row []Value

// Table 是内存中的数据表（对应 DataView），生成后只读。
type Table struct {
	Schema *Schema
	Rows   []Row
}

func NewTable(schema *Schema, rows []Row) *Table {
	return &Table{Schema: schema, Rows: rows}
}

// Len 返回行数。
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// RowView 是 (schema, row) 上按列名取值的只读视图，供输出绑定使用。
type RowView struct {
	Schema *Schema
	Row    Row
}

func (v RowView) value(name string, kind DataKind) (Value, error) {
	i, _, err := v.Schema.Lookup(name, kind)
	if err != nil {
		return Value{}, err
	}
	if i >= len(v.Row) {
		return Value{}, Errorf(ModuleEngine, ErrorCodeInternalError, "row has %d values, column %q at %d", len(v.Row), name, i)
	}
	return v.Row[i], nil
}

// Number 读取数值列。
func (v RowView) Number(name string) (float64, error) {
	val, err := v.value(name, KindNumber)
	return val.Num, err
}

// Bool 读取布尔列。
func (v RowView) Bool(name string) (bool, error) {
	val, err := v.value(name, KindBool)
	return val.Bool, err
}

// Text 读取文本列。
func (v RowView) Text(name string) (string, error) {
	val, err := v.value(name, KindText)
	return val.Text, err
}

// Vector 读取向量列，返回副本。
func (v RowView) Vector(name string) ([]float64, error) {
	val, err := v.value(name, KindVector)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(val.Vec))
	copy(out, val.Vec)
	return out, nil
}
