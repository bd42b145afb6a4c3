package model

// 预测器输出列名。
const (
	ColumnScore          = "Score"
	ColumnProbability    = "Probability"
	ColumnPredictedLabel = "PredictedLabel"
)

// BinaryModel 是二分类的最小抽象：输入特征向量，输出可比较的分数（margin）。
type BinaryModel interface {
	Name() string
	Margin(features []float64) (float64, error)
}

// MulticlassModel 是多分类的最小抽象：输出每个类别的分数。
type MulticlassModel interface {
	Name() string
	NumClasses() int
	Scores(features []float64) ([]float64, error)
}
