package conv

import (
	"reflect"
	"testing"
)

func TestConfigGetters(t *testing.T) {
	cfg := map[string]any{
		"name":   "iris",
		"int":    3,
		"float":  2.5,
		"flag":   true,
		"list":   []any{"a", 1, 2.5, nil},
		"inputs": []string{"x"},
	}

	if got := ConfigGet(cfg, "name", "default"); got != "iris" {
		t.Errorf("ConfigGet name = %q", got)
	}
	if got := ConfigGet(cfg, "int", "default"); got != "default" {
		t.Errorf("ConfigGet wrong type = %q", got)
	}
	if got := ConfigGet[string](nil, "name", "d"); got != "d" {
		t.Errorf("ConfigGet nil map = %q", got)
	}

	int64Tests := []struct {
		key  string
		want int64
	}{
		{"int", 3},
		{"float", 2},
		{"name", -1},
		{"missing", -1},
	}
	for _, tt := range int64Tests {
		if got := ConfigGetInt64(cfg, tt.key, -1); got != tt.want {
			t.Errorf("ConfigGetInt64(%s) = %d, want %d", tt.key, got, tt.want)
		}
	}

	floatTests := []struct {
		key  string
		want float64
	}{
		{"int", 3},
		{"float", 2.5},
		{"flag", -1},
		{"name", -1},
		{"missing", -1},
	}
	for _, tt := range floatTests {
		if got := ConfigGetFloat64(cfg, tt.key, -1); got != tt.want {
			t.Errorf("ConfigGetFloat64(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}

	if got := SliceAnyToString(cfg["list"]); !reflect.DeepEqual(got, []string{"a", "1", "2.5"}) {
		t.Errorf("SliceAnyToString(list) = %v", got)
	}
	if got := SliceAnyToString(cfg["inputs"]); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("SliceAnyToString(inputs) = %v", got)
	}
	if got := SliceAnyToString("x"); got != nil {
		t.Errorf("SliceAnyToString(string) = %v", got)
	}
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{1, 1, true},
		{int64(2), 2, true},
		{float32(0.5), 0.5, true},
		{true, 1, true},
		{"1", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToFloat64(%v) = %v, %v", tt.in, got, ok)
		}
	}
}
