package core

import (
	"fmt"
	"strings"
)

// DataKind 是列的数据类型。
type DataKind int

const (
	KindNumber DataKind = iota // 单个数值（R4）
	KindBool                   // 布尔（BL）
	KindText                   // 文本（TX）
	KindVector                 // 定长数值向量（R4[]）
)

func (k DataKind) String() string {
	switch k {
	case KindNumber:
		return "R4"
	case KindBool:
		return "BL"
	case KindText:
		return "TX"
	case KindVector:
		return "R4[]"
	default:
		return fmt.Sprintf("DataKind(%d)", int(k))
	}
}

// ParseDataKind 解析配置中的类型名，兼容短名（R4/BL/TX）和可读名（number/bool/text/vector）。
func ParseDataKind(s string) (DataKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r4", "number", "float", "num":
		return KindNumber, nil
	case "bl", "bool", "boolean":
		return KindBool, nil
	case "tx", "text", "string":
		return KindText, nil
	case "r4[]", "vector", "vec":
		return KindVector, nil
	default:
		return 0, fmt.Errorf("unknown data kind %q", s)
	}
}

// Column 描述一列。Size 仅对 KindVector 有意义。
type Column struct {
	Name string
	Kind DataKind
	Size int
}

func (c Column) String() string {
	if c.Kind == KindVector {
		return fmt.Sprintf("%s:%s{%d}", c.Name, c.Kind, c.Size)
	}
	return fmt.Sprintf("%s:%s", c.Name, c.Kind)
}

// Schema 是有序的列集合，构造后不可变。
// 同名列以后出现的为准（变换追加的新列会遮蔽旧列）。
type Schema struct {
	columns []Column
	index   map[string]int
}

func NewSchema(columns ...Column) *Schema {
	s := &Schema{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(s.columns, columns)
	for i, c := range s.columns {
		s.index[c.Name] = i
	}
	return s
}

// Len 返回列数（包含被遮蔽的列）。
func (s *Schema) Len() int { return len(s.columns) }

// Column 返回第 i 列。
func (s *Schema) Column(i int) Column { return s.columns[i] }

// Columns 返回列的副本。
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Index 按名称查找列位置。
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Lookup 按名称查找列，并校验类型。
func (s *Schema) Lookup(name string, kinds ...DataKind) (int, Column, error) {
	i, ok := s.index[name]
	if !ok {
		return -1, Column{}, Errorf(ModulePipeline, ErrorCodeInvalidInput, "column %q not found in schema %s", name, s)
	}
	c := s.columns[i]
	if len(kinds) == 0 {
		return i, c, nil
	}
	for _, k := range kinds {
		if c.Kind == k {
			return i, c, nil
		}
	}
	return -1, Column{}, Errorf(ModulePipeline, ErrorCodeInvalidInput, "column %q has kind %s, want one of %v", name, c.Kind, kinds)
}

// Append 返回追加了新列的 schema。
func (s *Schema) Append(columns ...Column) *Schema {
	all := make([]Column, 0, len(s.columns)+len(columns))
	all = append(all, s.columns...)
	all = append(all, columns...)
	return NewSchema(all...)
}

func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
