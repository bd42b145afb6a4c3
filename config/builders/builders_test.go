package builders

import (
	"testing"

	"github.com/rushteam/predbench/config"
	"github.com/rushteam/predbench/feature"
	"github.com/rushteam/predbench/pipeline"
	"github.com/rushteam/predbench/trainer"
)

func TestRegistered(t *testing.T) {
	want := []string{
		"trainer.sdca.binary",
		"trainer.sdca.multiclass",
		"transform.concat",
		"transform.featurize_text",
		"transform.filter",
		"transform.normalize_minmax",
	}
	got := config.SupportedTypes()
	have := make(map[string]bool, len(got))
	for _, name := range got {
		have[name] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("%s not registered (have %v)", name, got)
		}
	}
}

func TestTrainerOptions(t *testing.T) {
	cfg := map[string]interface{}{
		"label":                 "Sentiment",
		"num_threads":           4,
		"convergence_tolerance": 0.01,
		"max_iterations":        20.0,
		"l2":                    1,
		"seed":                  7,
		"disable_shuffle":       true,
	}
	got := trainerOptions(cfg)
	want := trainer.Options{
		LabelColumn:          "Sentiment",
		NumThreads:           4,
		ConvergenceTolerance: 0.01,
		MaxIterations:        20,
		L2Const:              1,
		Seed:                 7,
		DisableShuffle:       true,
	}
	if got != want {
		t.Errorf("trainerOptions = %+v, want %+v", got, want)
	}
	if def := trainerOptions(nil); def.Seed != 1 || def.NumThreads != 1 {
		t.Errorf("defaults = %+v", def)
	}
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name    string
		build   pipeline.NodeBuilder
		cfg     map[string]interface{}
		wantErr bool
	}{
		{
			name:  "concat",
			build: BuildConcat,
			cfg:   map[string]interface{}{"inputs": []interface{}{"A", "B"}},
		},
		{name: "concat without inputs", build: BuildConcat, cfg: map[string]interface{}{}, wantErr: true},
		{
			name:  "text",
			build: BuildFeaturizeText,
			cfg:   map[string]interface{}{"input": "SentimentText", "hash_bits": 12, "keep_case": true},
		},
		{name: "text without input", build: BuildFeaturizeText, cfg: nil, wantErr: true},
		{
			name:    "text hash bits too large",
			build:   BuildFeaturizeText,
			cfg:     map[string]interface{}{"input": "T", "hash_bits": 30},
			wantErr: true,
		},
		{name: "filter", build: BuildFilter, cfg: map[string]interface{}{"expr": "row.A > 0.0"}},
		{name: "filter without expr", build: BuildFilter, cfg: nil, wantErr: true},
		{name: "normalize", build: BuildNormalize, cfg: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildFeaturizeText_Options(t *testing.T) {
	e, err := BuildFeaturizeText(map[string]interface{}{
		"input":      "SentimentText",
		"word_ngram": 1,
		"char_ngram": 0,
		"max_terms":  100,
	})
	if err != nil {
		t.Fatal(err)
	}
	opts := e.(*feature.TextFeaturizer).Options
	if opts.Output != "Features" || opts.WordNgram != 1 || opts.CharNgram != 0 || opts.MaxTerms != 100 {
		t.Errorf("options = %+v", opts)
	}
}
