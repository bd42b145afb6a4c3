package trainer

import (
	"math"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/feature"
)

// examples 是训练用的稠密矩阵，已去掉含缺失值的行。
type examples struct {
	x       [][]float64
	labels  []float64
	dims    int
	scales  []float64 // 每维缩放系数，未归一化时全为 1
	skipped int
}

// extract 从表中取出特征与标签。布尔标签转换为 1/0。
func extract(t *core.Table, opts Options) (*examples, error) {
	if t.Len() == 0 {
		return nil, core.Errorf(core.ModuleTrainer, core.ErrorCodeInvalidInput, "trainer: empty training data")
	}
	fpos, fcol, err := t.Schema.Lookup(opts.FeatureColumn, core.KindVector)
	if err != nil {
		return nil, core.WrapError(core.ModuleTrainer, core.ErrorCodeInvalidInput, err, "trainer: feature column")
	}
	lpos, lcol, err := t.Schema.Lookup(opts.LabelColumn, core.KindNumber, core.KindBool)
	if err != nil {
		return nil, core.WrapError(core.ModuleTrainer, core.ErrorCodeInvalidInput, err, "trainer: label column")
	}
	if fcol.Size == 0 {
		return nil, core.Errorf(core.ModuleTrainer, core.ErrorCodeInvalidInput, "trainer: feature column %q is empty", opts.FeatureColumn)
	}

	ex := &examples{
		x:      make([][]float64, 0, t.Len()),
		labels: make([]float64, 0, t.Len()),
		dims:   fcol.Size,
	}
	for _, row := range t.Rows {
		var label float64
		if lcol.Kind == core.KindBool {
			if row[lpos].Bool {
				label = 1
			}
		} else {
			label = row[lpos].Num
		}
		vec := row[fpos].Vec
		if math.IsNaN(label) || len(vec) != fcol.Size || hasNaN(vec) {
			ex.skipped++
			continue
		}
		ex.x = append(ex.x, vec)
		ex.labels = append(ex.labels, label)
	}
	if len(ex.x) == 0 {
		return nil, core.Errorf(core.ModuleTrainer, core.ErrorCodeInvalidInput, "trainer: all %d rows have missing values", ex.skipped)
	}

	ex.scales = make([]float64, ex.dims)
	for j := range ex.scales {
		ex.scales[j] = 1
	}
	if !opts.DisableNormalization {
		ex.scales = feature.MaxAbsScales(t, fpos, fcol.Size)
		ex.x = scaleRows(ex.x, ex.scales)
	}
	return ex, nil
}

func scaleRows(x [][]float64, scales []float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = v * scales[j]
		}
		out[i] = r
	}
	return out
}

func hasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
