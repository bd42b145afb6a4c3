package bench

import (
	"math"
	"sort"
	"time"
)

// Statistics 是一组耗时样本的统计量。
type Statistics struct {
	Mean   time.Duration `json:"mean_ns"`
	Median time.Duration `json:"median_ns"`
	P95    time.Duration `json:"p95_ns"`
	P99    time.Duration `json:"p99_ns"`
	Min    time.Duration `json:"min_ns"`
	Max    time.Duration `json:"max_ns"`
	StdDev time.Duration `json:"stddev_ns"`
}

// ComputeStatistics 计算耗时统计，样本为空时返回零值。
func ComputeStatistics(samples []time.Duration) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	// 复制并排序
	sorted := make([]float64, len(samples))
	for i, d := range samples {
		sorted[i] = float64(d)
	}
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, v := range sorted {
		variance += (v - mean) * (v - mean)
	}

	return Statistics{
		Mean:   time.Duration(mean),
		Median: time.Duration(percentile(sorted, 0.5)),
		P95:    time.Duration(percentile(sorted, 0.95)),
		P99:    time.Duration(percentile(sorted, 0.99)),
		Min:    time.Duration(sorted[0]),
		Max:    time.Duration(sorted[len(sorted)-1]),
		StdDev: time.Duration(math.Sqrt(variance / float64(len(sorted)))),
	}
}

// percentile 在已排序样本上按线性插值取分位数。
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
