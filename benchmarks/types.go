package benchmarks

import (
	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/engine"
	"github.com/rushteam/predbench/model"
)

// IrisData 是鸢尾花数据的一行。
type IrisData struct {
	Label       float64
	SepalLength float64
	SepalWidth  float64
	PetalLength float64
	PetalWidth  float64
}

// IrisPrediction 是多分类输出：各类别概率（列 Score）。
type IrisPrediction struct {
	PredictedLabels []float64
}

// SentimentData 是评论文本及其标签（列 Label）。
type SentimentData struct {
	Sentiment     bool
	SentimentText string
}

// SentimentPrediction 是二分类输出：预测标签（列 PredictedLabel）与分数。
type SentimentPrediction struct {
	Sentiment bool
	Score     float64
}

// BreastCancerData 是乳腺癌数据的一行：标签 + 9 个数值特征。
type BreastCancerData struct {
	Label    bool
	Features []float64
}

// BreastCancerPrediction 是二分类分数。
type BreastCancerPrediction struct {
	Score float64
}

// field 把结构体字段映射到同名列。
type field[T any] struct {
	column string
	value  func(T) core.Value
}

// bindInput 按列名把字段对齐到 schema 的位置，位置只计算一次。
// schema 中每一列都必须有对应字段。
func bindInput[T any](schema *core.Schema, fields ...field[T]) (engine.InputBinding[T], error) {
	byName := make(map[string]func(T) core.Value, len(fields))
	for _, f := range fields {
		byName[f.column] = f.value
	}
	getters := make([]func(T) core.Value, schema.Len())
	for i, col := range schema.Columns() {
		get, ok := byName[col.Name]
		if !ok {
			return engine.InputBinding[T]{}, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput,
				"no field bound to column %q", col.Name)
		}
		getters[i] = get
	}
	return engine.InputBinding[T]{
		Schema: schema,
		Row: func(in T) (core.Row, error) {
			row := make(core.Row, len(getters))
			for i, get := range getters {
				row[i] = get(in)
			}
			return row, nil
		},
	}, nil
}

func irisInput(schema *core.Schema) (engine.InputBinding[IrisData], error) {
	return bindInput(schema,
		field[IrisData]{"Label", func(d IrisData) core.Value { return core.Number(d.Label) }},
		field[IrisData]{"SepalLength", func(d IrisData) core.Value { return core.Number(d.SepalLength) }},
		field[IrisData]{"SepalWidth", func(d IrisData) core.Value { return core.Number(d.SepalWidth) }},
		field[IrisData]{"PetalLength", func(d IrisData) core.Value { return core.Number(d.PetalLength) }},
		field[IrisData]{"PetalWidth", func(d IrisData) core.Value { return core.Number(d.PetalWidth) }},
	)
}

func irisOutput(v core.RowView) (IrisPrediction, error) {
	scores, err := v.Vector(model.ColumnScore)
	if err != nil {
		return IrisPrediction{}, err
	}
	return IrisPrediction{PredictedLabels: scores}, nil
}

func sentimentInput(schema *core.Schema) (engine.InputBinding[SentimentData], error) {
	return bindInput(schema,
		field[SentimentData]{"Label", func(d SentimentData) core.Value { return core.Bool(d.Sentiment) }},
		field[SentimentData]{"SentimentText", func(d SentimentData) core.Value { return core.Text(d.SentimentText) }},
	)
}

func sentimentOutput(v core.RowView) (SentimentPrediction, error) {
	label, err := v.Bool(model.ColumnPredictedLabel)
	if err != nil {
		return SentimentPrediction{}, err
	}
	score, err := v.Number(model.ColumnScore)
	if err != nil {
		return SentimentPrediction{}, err
	}
	return SentimentPrediction{Sentiment: label, Score: score}, nil
}

func breastCancerInput(schema *core.Schema) (engine.InputBinding[BreastCancerData], error) {
	return bindInput(schema,
		field[BreastCancerData]{"Label", func(d BreastCancerData) core.Value { return core.Bool(d.Label) }},
		field[BreastCancerData]{"Features", func(d BreastCancerData) core.Value { return core.Vector(d.Features) }},
	)
}

func breastCancerOutput(v core.RowView) (BreastCancerPrediction, error) {
	score, err := v.Number(model.ColumnScore)
	if err != nil {
		return BreastCancerPrediction{}, err
	}
	return BreastCancerPrediction{Score: score}, nil
}
