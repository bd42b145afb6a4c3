package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

func TestSigmoid(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{800, 1},
		{-800, 0},
	}
	for _, tt := range tests {
		got := Sigmoid(tt.z)
		if math.IsNaN(got) || math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
	if s := Sigmoid(2) + Sigmoid(-2); math.Abs(s-1) > 1e-12 {
		t.Errorf("Sigmoid symmetry broken: %v", s)
	}
}

func TestSoftmax(t *testing.T) {
	v := []float64{1000, 1000, 1000}
	Softmax(v)
	for _, p := range v {
		if math.Abs(p-1.0/3) > 1e-12 {
			t.Fatalf("Softmax = %v", v)
		}
	}
	Softmax(nil)
}

func TestBinaryPredictor(t *testing.T) {
	m := &BinaryPredictor{Weights: []float64{1, -2}, Bias: 0.5}
	z, err := m.Margin([]float64{3, 1})
	if err != nil || z != 1.5 {
		t.Errorf("Margin = %v, %v; want 1.5", z, err)
	}
	if _, err := m.Margin([]float64{1}); !core.IsInvalidInput(err) {
		t.Errorf("dimension mismatch err = %v", err)
	}
	p, _ := m.Probability([]float64{3, 1})
	if math.Abs(p-Sigmoid(1.5)) > 1e-15 {
		t.Errorf("Probability = %v", p)
	}
}

func TestMulticlassPredictor(t *testing.T) {
	m := &MulticlassPredictor{
		Classes: []float64{0, 1, 2},
		Weights: [][]float64{{1, 0}, {0, 1}, {-1, -1}},
		Biases:  []float64{0, 0, 0},
	}
	scores, err := m.Scores([]float64{2, 1})
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("sum = %v", sum)
	}
	if !(scores[0] > scores[1] && scores[1] > scores[2]) {
		t.Errorf("scores not ordered by margin: %v", scores)
	}
}

func featureSchema(size int) *core.Schema {
	return core.NewSchema(core.Column{Name: "Features", Kind: core.KindVector, Size: size})
}

func TestBinaryPredictionTransformer(t *testing.T) {
	tr := &BinaryPredictionTransformer{
		FeatureColumn: "Features",
		Model:         &BinaryPredictor{Weights: []float64{1, 1}, Bias: -1},
	}
	schema, fn, err := tr.Bind(featureSchema(2))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out, err := fn(core.Row{core.Vector([]float64{0.2, 0.3})})
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	view := core.RowView{Schema: schema, Row: out}
	score, _ := view.Number(ColumnScore)
	label, _ := view.Bool(ColumnPredictedLabel)
	prob, _ := view.Number(ColumnProbability)
	if math.Abs(score+0.5) > 1e-12 || label || math.Abs(prob-Sigmoid(-0.5)) > 1e-12 {
		t.Errorf("score=%v label=%v prob=%v", score, label, prob)
	}

	if _, _, err := tr.Bind(featureSchema(3)); !core.IsInvalidInput(err) {
		t.Errorf("size mismatch err = %v", err)
	}
}

func TestMulticlassPredictionTransformer(t *testing.T) {
	tr := &MulticlassPredictionTransformer{
		FeatureColumn: "Features",
		Model: &MulticlassPredictor{
			Classes: []float64{3, 7},
			Weights: [][]float64{{1}, {-1}},
			Biases:  []float64{0, 0},
		},
	}
	schema, fn, err := tr.Bind(featureSchema(1))
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out, err := fn(core.Row{core.Vector([]float64{-2})})
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	view := core.RowView{Schema: schema, Row: out}
	scores, _ := view.Vector(ColumnScore)
	label, _ := view.Number(ColumnPredictedLabel)
	if len(scores) != 2 || label != 7 {
		t.Errorf("scores=%v label=%v", scores, label)
	}

	empty := &MulticlassPredictionTransformer{FeatureColumn: "Features", Model: &MulticlassPredictor{}}
	if _, _, err := empty.Bind(featureSchema(1)); !core.IsInvalidInput(err) {
		t.Errorf("empty model err = %v", err)
	}
}

func TestPredictionTransformersPersist(t *testing.T) {
	chain := &pipeline.TransformerChain{Transformers: []pipeline.Transformer{
		&BinaryPredictionTransformer{FeatureColumn: "Features", Model: &BinaryPredictor{Weights: []float64{0.1, 0.2}, Bias: 0.3}},
	}}
	raw, err := pipeline.MarshalChain(chain)
	if err != nil {
		t.Fatalf("MarshalChain: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("not json: %v", err)
	}
	back, err := pipeline.UnmarshalChain(raw)
	if err != nil {
		t.Fatalf("UnmarshalChain: %v", err)
	}
	got := back.LastTransformer().(*BinaryPredictionTransformer)
	if got.Model.Bias != 0.3 || got.Model.Weights[1] != 0.2 {
		t.Errorf("decoded model = %+v", got.Model)
	}
}

func TestDecodeRejectsMalformedPredictors(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		payload string
	}{
		{name: "binary without model", typ: typeBinary, payload: `{"feature_column":"Features"}`},
		{name: "multiclass without model", typ: typeMulticlass, payload: `{"feature_column":"Features"}`},
		{
			name:    "multiclass bias count",
			typ:     typeMulticlass,
			payload: `{"feature_column":"Features","model":{"classes":[0,1],"weights":[[1],[2]],"biases":[0]}}`,
		},
		{
			name:    "multiclass class count",
			typ:     typeMulticlass,
			payload: `{"feature_column":"Features","model":{"classes":[0,1,2],"weights":[[1],[2]],"biases":[0,0]}}`,
		},
		{
			name:    "multiclass ragged weights",
			typ:     typeMulticlass,
			payload: `{"feature_column":"Features","model":{"classes":[0,1],"weights":[[1,2],[3]],"biases":[0,0]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"version":1,"stages":[{"type":"` + tt.typ + `","payload":` + tt.payload + `}]}`
			if _, err := pipeline.UnmarshalChain([]byte(raw)); !core.IsInvalidInput(err) {
				t.Errorf("err = %v, want invalid input", err)
			}
		})
	}

	nilModel := &BinaryPredictionTransformer{FeatureColumn: "Features"}
	if _, _, err := nilModel.Bind(featureSchema(1)); !core.IsInvalidInput(err) {
		t.Errorf("Bind without model err = %v", err)
	}
}
