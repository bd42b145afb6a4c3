package model

import (
	"encoding/json"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

const (
	typeBinary     = "predictor.binary"
	typeMulticlass = "predictor.multiclass"
)

func init() {
	pipeline.RegisterDecoder(typeBinary, func(raw json.RawMessage) (pipeline.Transformer, error) {
		t := &BinaryPredictionTransformer{}
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, err
		}
		if err := t.validate(); err != nil {
			return nil, err
		}
		return t, nil
	})
	pipeline.RegisterDecoder(typeMulticlass, func(raw json.RawMessage) (pipeline.Transformer, error) {
		t := &MulticlassPredictionTransformer{}
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, err
		}
		if err := t.validate(); err != nil {
			return nil, err
		}
		return t, nil
	})
}

// BinaryPredictionTransformer 把二分类模型包装成 Transformer：
//   - Score: margin
//   - Probability: sigmoid(margin)
//   - PredictedLabel: Score > 0
type BinaryPredictionTransformer struct {
	FeatureColumn string           `json:"feature_column"`
	Model         *BinaryPredictor `json:"model"`
}

func (t *BinaryPredictionTransformer) Name() string        { return typeBinary }
func (t *BinaryPredictionTransformer) TypeName() string    { return typeBinary }
func (t *BinaryPredictionTransformer) Kind() pipeline.Kind { return pipeline.KindPredictor }

func (t *BinaryPredictionTransformer) validate() error {
	if t.Model == nil {
		return core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "binary: model is missing")
	}
	return nil
}

func (t *BinaryPredictionTransformer) Bind(in *core.Schema) (*core.Schema, pipeline.RowFunc, error) {
	if err := t.validate(); err != nil {
		return nil, nil, err
	}
	pos, err := bindFeatures(in, t.FeatureColumn, len(t.Model.Weights))
	if err != nil {
		return nil, nil, err
	}
	out := in.Append(
		core.Column{Name: ColumnScore, Kind: core.KindNumber},
		core.Column{Name: ColumnProbability, Kind: core.KindNumber},
		core.Column{Name: ColumnPredictedLabel, Kind: core.KindBool},
	)
	return out, func(row core.Row) (core.Row, error) {
		score, err := t.Model.Margin(row[pos].Vec)
		if err != nil {
			return nil, err
		}
		next := make(core.Row, len(row), len(row)+3)
		copy(next, row)
		return append(next, core.Number(score), core.Number(Sigmoid(score)), core.Bool(score > 0)), nil
	}, nil
}

// MulticlassPredictionTransformer 把多分类模型包装成 Transformer：
//   - Score: 各类概率向量（长度 = 训练数据中的类别数）
//   - PredictedLabel: 概率最大类别的原始标签值
type MulticlassPredictionTransformer struct {
	FeatureColumn string               `json:"feature_column"`
	Model         *MulticlassPredictor `json:"model"`
}

func (t *MulticlassPredictionTransformer) Name() string        { return typeMulticlass }
func (t *MulticlassPredictionTransformer) TypeName() string    { return typeMulticlass }
func (t *MulticlassPredictionTransformer) Kind() pipeline.Kind { return pipeline.KindPredictor }

func (t *MulticlassPredictionTransformer) validate() error {
	if t.Model == nil {
		return core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "multiclass: model is missing")
	}
	return t.Model.Validate()
}

func (t *MulticlassPredictionTransformer) Bind(in *core.Schema) (*core.Schema, pipeline.RowFunc, error) {
	if err := t.validate(); err != nil {
		return nil, nil, err
	}
	pos, err := bindFeatures(in, t.FeatureColumn, len(t.Model.Weights[0]))
	if err != nil {
		return nil, nil, err
	}
	k := t.Model.NumClasses()
	out := in.Append(
		core.Column{Name: ColumnScore, Kind: core.KindVector, Size: k},
		core.Column{Name: ColumnPredictedLabel, Kind: core.KindNumber},
	)
	return out, func(row core.Row) (core.Row, error) {
		scores, err := t.Model.Scores(row[pos].Vec)
		if err != nil {
			return nil, err
		}
		best := 0
		for i, s := range scores {
			if s > scores[best] {
				best = i
			}
		}
		next := make(core.Row, len(row), len(row)+2)
		copy(next, row)
		return append(next, core.Vector(scores), core.Number(t.Model.Classes[best])), nil
	}, nil
}

func bindFeatures(in *core.Schema, name string, dims int) (int, error) {
	pos, col, err := in.Lookup(name, core.KindVector)
	if err != nil {
		return -1, err
	}
	if col.Size != dims {
		return -1, core.Errorf(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"column %q has size %d, model expects %d", name, col.Size, dims)
	}
	return pos, nil
}
