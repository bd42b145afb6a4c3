// Package data 提供文本表格读取（TextLoader）和数据集目录（Catalog）。
package data

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/predbench/core"
)

// ErrDatasetNotFound 表示数据集文件不存在。
var ErrDatasetNotFound = core.NewDomainError(core.ModuleData, core.ErrorCodeNotFound, "data: dataset not found")

// Range 是源列的闭区间 [Min, Max]，读取为向量列。
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// LoaderColumn 声明一列：名称、类型以及源列位置（Index 或 Range 二选一）。
type LoaderColumn struct {
	Name  string
	Kind  core.DataKind
	Index int
	Range *Range
}

// Col 声明单个源列。
func Col(name string, kind core.DataKind, index int) LoaderColumn {
	return LoaderColumn{Name: name, Kind: kind, Index: index}
}

// VecCol 声明一段连续源列组成的数值向量。
func VecCol(name string, min, max int) LoaderColumn {
	return LoaderColumn{Name: name, Kind: core.KindVector, Range: &Range{Min: min, Max: max}}
}

func (c LoaderColumn) column() core.Column {
	if c.Range != nil {
		return core.Column{Name: c.Name, Kind: core.KindVector, Size: c.Range.Max - c.Range.Min + 1}
	}
	return core.Column{Name: c.Name, Kind: c.Kind}
}

func (c LoaderColumn) maxIndex() int {
	if c.Range != nil {
		return c.Range.Max
	}
	return c.Index
}

// TextLoader 读取分隔符文本文件。
// Separator 为 0 时根据第一行数据自动识别（制表符、逗号、空格）。
type TextLoader struct {
	Columns   []LoaderColumn
	HasHeader bool
	Separator rune
}

// NewTextLoader 创建 TextLoader，默认制表符分隔。
func NewTextLoader(columns []LoaderColumn, hasHeader bool) *TextLoader {
	return &TextLoader{Columns: columns, HasHeader: hasHeader, Separator: '\t'}
}

// Schema 返回读取结果的 schema。
func (l *TextLoader) Schema() (*core.Schema, error) {
	if len(l.Columns) == 0 {
		return nil, core.Errorf(core.ModuleData, core.ErrorCodeInvalidInput, "data: loader has no columns")
	}
	cols := make([]core.Column, 0, len(l.Columns))
	for _, c := range l.Columns {
		if c.Name == "" {
			return nil, core.Errorf(core.ModuleData, core.ErrorCodeInvalidInput, "data: column without name")
		}
		if c.Range != nil {
			if c.Range.Min < 0 || c.Range.Max < c.Range.Min {
				return nil, core.Errorf(core.ModuleData, core.ErrorCodeInvalidInput, "data: column %q has invalid range %d-%d", c.Name, c.Range.Min, c.Range.Max)
			}
		} else {
			if c.Index < 0 {
				return nil, core.Errorf(core.ModuleData, core.ErrorCodeInvalidInput, "data: column %q has negative index", c.Name)
			}
			if c.Kind == core.KindVector {
				return nil, core.Errorf(core.ModuleData, core.ErrorCodeInvalidInput, "data: vector column %q needs a range", c.Name)
			}
		}
		cols = append(cols, c.column())
	}
	return core.NewSchema(cols...), nil
}

// Signature 返回能唯一描述读取配置的字符串，用作缓存 key。
func (l *TextLoader) Signature() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "h=%t;s=%q", l.HasHeader, l.Separator)
	for _, c := range l.Columns {
		if c.Range != nil {
			fmt.Fprintf(&sb, ";%s:%s@%d-%d", c.Name, c.Kind, c.Range.Min, c.Range.Max)
		} else {
			fmt.Fprintf(&sb, ";%s:%s@%d", c.Name, c.Kind, c.Index)
		}
	}
	return sb.String()
}

// Read 读取文件并返回 Table。文件不存在、格式错误都会返回错误。
func (l *TextLoader) Read(ctx context.Context, path string) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.WrapError(core.ModuleData, core.ErrorCodeNotFound, err, "data: dataset not found: %s", path)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	table, err := l.ReadFrom(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}

// ReadFrom 从 io.Reader 读取。
func (l *TextLoader) ReadFrom(ctx context.Context, r io.Reader) (*core.Table, error) {
	schema, err := l.Schema()
	if err != nil {
		return nil, err
	}
	width := 0
	for _, c := range l.Columns {
		if m := c.maxIndex(); m+1 > width {
			width = m + 1
		}
	}

	sep := l.Separator
	headerSkipped := !l.HasHeader
	rows := make([]core.Row, 0, 256)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSkipped {
			headerSkipped = true
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if sep == 0 {
			sep = sniffSeparator(line)
		}
		fields := splitFields(line, sep)
		if len(fields) < width {
			return nil, core.Errorf(core.ModuleData, core.ErrorCodeInvalidInput,
				"data: line %d has %d fields, schema needs %d", lineNo, len(fields), width)
		}
		row, err := l.parseRow(fields)
		if err != nil {
			return nil, core.WrapError(core.ModuleData, core.ErrorCodeInvalidInput, err, "data: line %d", lineNo)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(rows) == 0 {
		return nil, core.Errorf(core.ModuleData, core.ErrorCodeInvalidInput, "data: no rows")
	}
	return core.NewTable(schema, rows), nil
}

func (l *TextLoader) parseRow(fields []string) (core.Row, error) {
	row := make(core.Row, len(l.Columns))
	for i, c := range l.Columns {
		if c.Range != nil {
			vec := make([]float64, 0, c.Range.Max-c.Range.Min+1)
			for j := c.Range.Min; j <= c.Range.Max; j++ {
				v, err := ParseNumber(fields[j])
				if err != nil {
					return nil, fmt.Errorf("column %q[%d]: %w", c.Name, j, err)
				}
				vec = append(vec, v)
			}
			row[i] = core.Vector(vec)
			continue
		}
		raw := fields[c.Index]
		switch c.Kind {
		case core.KindNumber:
			v, err := ParseNumber(raw)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
			row[i] = core.Number(v)
		case core.KindBool:
			b, err := ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
			row[i] = core.Bool(b)
		case core.KindText:
			row[i] = core.Text(raw)
		default:
			return nil, fmt.Errorf("column %q: unsupported kind %s", c.Name, c.Kind)
		}
	}
	return row, nil
}

// ParseNumber 解析数值。"?" 和空串视为缺失值（NaN）。
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "?" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseBool 解析布尔值：1/0、true/false、yes/no，其他数值大于 0 视为 true。
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "t", "y":
		return true, nil
	case "0", "false", "no", "f", "n", "-1":
		return false, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false, fmt.Errorf("invalid bool %q", s)
	}
	return f > 0, nil
}

func sniffSeparator(line string) rune {
	for _, r := range []rune{'\t', ',', ' '} {
		if strings.ContainsRune(line, r) {
			return r
		}
	}
	return '\t'
}

func splitFields(line string, sep rune) []string {
	if sep == ' ' {
		return strings.Fields(line)
	}
	return strings.Split(line, string(sep))
}
