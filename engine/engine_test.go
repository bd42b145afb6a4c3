package engine

import (
	"errors"
	"testing"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/model"
	"github.com/rushteam/predbench/pipeline"
)

type point struct {
	Label    bool
	Features []float64
}

type score struct {
	Score float64
	Label bool
}

var pointSchema = core.NewSchema(
	core.Column{Name: "Label", Kind: core.KindBool},
	core.Column{Name: "Features", Kind: core.KindVector, Size: 2},
)

func pointInput() InputBinding[point] {
	return InputBinding[point]{
		Schema: pointSchema,
		Row: func(p point) (core.Row, error) {
			return core.Row{core.Bool(p.Label), core.Vector(p.Features)}, nil
		},
	}
}

func scoreOutput(v core.RowView) (score, error) {
	s, err := v.Number(model.ColumnScore)
	if err != nil {
		return score{}, err
	}
	l, err := v.Bool(model.ColumnPredictedLabel)
	return score{Score: s, Label: l}, err
}

func linearModel() pipeline.Transformer {
	return &pipeline.TransformerChain{Transformers: []pipeline.Transformer{
		&model.BinaryPredictionTransformer{
			FeatureColumn: "Features",
			Model:         &model.BinaryPredictor{Weights: []float64{1, -1}, Bias: 0.5},
		},
	}}
}

func TestPredictionEngine_Predict(t *testing.T) {
	eng, err := CreatePredictionEngine(linearModel(), pointInput(), scoreOutput)
	if err != nil {
		t.Fatalf("CreatePredictionEngine: %v", err)
	}
	tests := []struct {
		in   point
		want score
	}{
		{in: point{Features: []float64{2, 1}}, want: score{Score: 1.5, Label: true}},
		{in: point{Features: []float64{0, 1}}, want: score{Score: -0.5, Label: false}},
	}
	for _, tt := range tests {
		got, err := eng.Predict(tt.in)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if got != tt.want {
			t.Errorf("Predict(%v) = %v, want %v", tt.in, got, tt.want)
		}
		again, _ := eng.Predict(tt.in)
		if again != got {
			t.Errorf("repeated Predict differs: %v vs %v", got, again)
		}
	}
	if eng.OutputSchema().Len() != 5 {
		t.Errorf("output schema = %s", eng.OutputSchema())
	}
}

func TestCreatePredictionEngine_Errors(t *testing.T) {
	wrongSchema := InputBinding[point]{
		Schema: core.NewSchema(core.Column{Name: "Features", Kind: core.KindVector, Size: 3}),
		Row:    pointInput().Row,
	}
	tests := []struct {
		name  string
		model pipeline.Transformer
		in    InputBinding[point]
		out   OutputBinding[score]
	}{
		{name: "nil model", model: nil, in: pointInput(), out: scoreOutput},
		{name: "incomplete input", model: linearModel(), in: InputBinding[point]{}, out: scoreOutput},
		{name: "nil output", model: linearModel(), in: pointInput(), out: nil},
		{name: "schema mismatch", model: linearModel(), in: wrongSchema, out: scoreOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreatePredictionEngine(tt.model, tt.in, tt.out); !core.IsInvalidInput(err) {
				t.Errorf("err = %v, want invalid input", err)
			}
		})
	}
}

func TestPredictionEngine_InputErrors(t *testing.T) {
	eng, err := CreatePredictionEngine(linearModel(), pointInput(), scoreOutput)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Predict(point{Features: []float64{1}}); !core.IsInvalidInput(err) {
		t.Errorf("short feature vector err = %v", err)
	}

	boom := errors.New("boom")
	bad := InputBinding[point]{Schema: pointSchema, Row: func(point) (core.Row, error) { return nil, boom }}
	eng2, err := CreatePredictionEngine(linearModel(), bad, scoreOutput)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng2.Predict(point{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	short := InputBinding[point]{Schema: pointSchema, Row: func(point) (core.Row, error) { return core.Row{core.Bool(true)}, nil }}
	eng3, _ := CreatePredictionEngine(linearModel(), short, scoreOutput)
	if _, err := eng3.Predict(point{}); !core.IsInvalidInput(err) {
		t.Errorf("row length mismatch err = %v", err)
	}
}
