package config_test

import (
	"strings"
	"testing"

	"github.com/rushteam/predbench/config"
	_ "github.com/rushteam/predbench/config/builders"
	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

const testPipelines = `
pipelines:
  - name: breast_cancer
    dataset: breast-cancer.txt
    loader:
      separator: tab
      columns:
        - { name: Label, kind: BL, index: 0 }
        - { name: Features, kind: R4, range: { min: 1, max: 9 } }
    nodes:
      - type: transform.normalize_minmax
      - type: trainer.sdca.binary
        config: { seed: 3 }
  - name: iris
    dataset: iris.txt
    loader:
      has_header: true
      columns:
        - { name: Label, kind: R4, index: 0 }
        - { name: A, kind: R4, index: 1 }
    nodes:
      - type: transform.concat
        config: { inputs: [A] }
      - type: trainer.sdca.multiclass
`

func TestBuildAll(t *testing.T) {
	f, err := pipeline.ParseYAML([]byte(testPipelines))
	if err != nil {
		t.Fatal(err)
	}
	ps, err := config.BuildAll(f)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("got %d pipelines", len(ps))
	}
	bc := ps[0]
	if bc.Name != "breast_cancer" || bc.Dataset != "breast-cancer.txt" {
		t.Errorf("pipeline = %s/%s", bc.Name, bc.Dataset)
	}
	if bc.Loader.HasHeader || bc.Loader.Separator != '\t' {
		t.Errorf("loader = %+v", bc.Loader)
	}
	if len(bc.Chain.Estimators) != 2 {
		t.Errorf("estimators = %d", len(bc.Chain.Estimators))
	}
	if got := ps[1].Chain.Estimators[1].Name(); got != "trainer.sdca.multiclass" {
		t.Errorf("iris trainer = %s", got)
	}
}

func TestBuild_Errors(t *testing.T) {
	trainer := pipeline.NodeConfig{Type: "trainer.sdca.binary"}
	cols := pipeline.LoaderConfig{Columns: []pipeline.ColumnConfig{{Name: "A", Kind: "R4"}}}
	tests := []struct {
		name  string
		cfg   pipeline.Config
		check func(error) bool
		want  string
	}{
		{
			name:  "unsupported node",
			cfg:   pipeline.Config{Name: "x", Dataset: "d", Nodes: []pipeline.NodeConfig{{Type: "trainer.fasttree"}}},
			check: core.IsNotSupported,
			want:  "unsupported node type",
		},
		{
			name:  "no trainer",
			cfg:   pipeline.Config{Name: "x", Dataset: "d", Nodes: []pipeline.NodeConfig{{Type: "transform.normalize_minmax"}}},
			check: core.IsInvalidInput,
			want:  "exactly one trainer",
		},
		{
			name:  "trainer not last",
			cfg:   pipeline.Config{Name: "x", Dataset: "d", Nodes: []pipeline.NodeConfig{trainer, {Type: "transform.normalize_minmax"}}},
			check: core.IsInvalidInput,
			want:  "must be the last node",
		},
		{
			name:  "two trainers",
			cfg:   pipeline.Config{Name: "x", Dataset: "d", Nodes: []pipeline.NodeConfig{trainer, trainer}},
			check: core.IsInvalidInput,
			want:  "must be the last node",
		},
		{
			name:  "no dataset",
			cfg:   pipeline.Config{Name: "x", Nodes: []pipeline.NodeConfig{trainer}},
			check: func(error) bool { return true },
			want:  "dataset is required",
		},
		{
			name:  "bad builder config",
			cfg:   pipeline.Config{Name: "x", Dataset: "d", Loader: cols, Nodes: []pipeline.NodeConfig{{Type: "transform.filter"}, trainer}},
			check: func(error) bool { return true },
			want:  "expr is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Build(&tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) || !tt.check(err) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestValidatePipelineConfig_Nil(t *testing.T) {
	if err := config.ValidatePipelineConfig(nil); err != nil {
		t.Errorf("nil config err = %v", err)
	}
}
