package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `
iterations: 500
min_time: 2s
format: json
only: [MakeIrisPredictions]
log:
  level: debug
redis:
  addr: localhost:6379
  ttl: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("loadRunConfig: %v", err)
	}
	if cfg.Iterations != 500 || cfg.Format != "json" || cfg.MinTime != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Warmup != 100 {
		t.Errorf("warmup = %d, want default 100", cfg.Warmup)
	}
	if !reflect.DeepEqual(cfg.Only, []string{"MakeIrisPredictions"}) {
		t.Errorf("only = %v", cfg.Only)
	}
	if cfg.Log.Level != "debug" || cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != time.Hour {
		t.Errorf("nested config not decoded: %+v", cfg)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadRunConfig_Missing(t *testing.T) {
	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RunConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*RunConfig) {}},
		{name: "bad format", mutate: func(c *RunConfig) { c.Format = "csv" }, wantErr: true},
		{name: "zero iterations", mutate: func(c *RunConfig) { c.Iterations = 0 }, wantErr: true},
		{name: "negative warmup", mutate: func(c *RunConfig) { c.Warmup = -1 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultRunConfig()
			tt.mutate(&cfg)
			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("splitList = %v", got)
	}
	if splitList("") != nil {
		t.Errorf("empty input should give nil")
	}
}
