// Package bench 是单行预测延迟的基准执行器。
//
// 每个 Benchmark 是一对显式的 Setup/Measure：
//   - Setup 不计时，用于读数据、训练模型、创建预测引擎
//   - Measure 是被计时的单次调用
//
// 任一 Setup 失败时整个运行中止，不会执行任何 Measure。
package bench

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/predbench/core"
)

// Benchmark 是一个可计时的单元。
type Benchmark struct {
	Name    string
	Setup   func(ctx context.Context) error
	Measure func() error
}

// Result 是一个基准的运行结果。
type Result struct {
	Name       string    `json:"name"`
	Iterations int       `json:"iterations"`
	StartedAt  time.Time `json:"started_at"`
	Statistics
	AllocsPerOp float64 `json:"allocs_per_op"`
	BytesPerOp  float64 `json:"bytes_per_op"`
}

// Runner 顺序执行基准。
type Runner struct {
	// Warmup 是计时前的预热调用次数。
	Warmup int
	// Iterations 是最少计时次数，默认 1000。
	Iterations int
	// MinTime 非零时，计时调用至少持续这么久（在满足 Iterations 之后继续）。
	MinTime time.Duration
	Logger  *zap.Logger
}

const defaultIterations = 1000

// maxIterations 限制 MinTime 模式下的样本数，避免样本切片无限增长。
const maxIterations = 10_000_000

// Run 先执行全部 Setup，全部成功后依次计时。
func (r *Runner) Run(ctx context.Context, benches []Benchmark) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(benches) == 0 {
		return nil, core.Errorf(core.ModuleBench, core.ErrorCodeInvalidInput, "bench: nothing to run")
	}

	for _, b := range benches {
		if b.Measure == nil {
			return nil, core.Errorf(core.ModuleBench, core.ErrorCodeInvalidInput, "bench %s: measure is nil", b.Name)
		}
		if b.Setup == nil {
			continue
		}
		start := time.Now()
		if err := b.Setup(ctx); err != nil {
			logger.Error("setup failed", zap.String("bench", b.Name), zap.Error(err))
			return nil, fmt.Errorf("bench %s: setup: %w", b.Name, err)
		}
		logger.Info("setup done", zap.String("bench", b.Name), zap.Duration("elapsed", time.Since(start)))
	}

	results := make([]Result, 0, len(benches))
	for _, b := range benches {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.measure(ctx, b)
		if err != nil {
			logger.Error("measure failed", zap.String("bench", b.Name), zap.Error(err))
			return results, fmt.Errorf("bench %s: measure: %w", b.Name, err)
		}
		logger.Info("measured",
			zap.String("bench", b.Name),
			zap.Int("iterations", res.Iterations),
			zap.Duration("mean", res.Mean),
			zap.Duration("p99", res.P99),
		)
		results = append(results, res)
	}
	return results, nil
}

// ctxCheckEvery 是计时循环中检查 ctx 的间隔（调用次数）。
const ctxCheckEvery = 1024

// measure 先做计时，再单独跑 n 次统计内存分配，
// 分配统计窗口内不追加样本，结果不含执行器自身的分配。
func (r *Runner) measure(ctx context.Context, b Benchmark) (Result, error) {
	for i := 0; i < r.Warmup; i++ {
		if err := b.Measure(); err != nil {
			return Result{}, err
		}
	}

	n := r.Iterations
	if n <= 0 {
		n = defaultIterations
	}
	samples := make([]time.Duration, 0, n)

	started := time.Now()
	for len(samples) < n || (r.MinTime > 0 && time.Since(started) < r.MinTime && len(samples) < maxIterations) {
		if len(samples)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		t0 := time.Now()
		err := b.Measure()
		samples = append(samples, time.Since(t0))
		if err != nil {
			return Result{}, err
		}
	}

	allocs, bytes, err := allocsPerOp(ctx, b.Measure, n)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Name:        b.Name,
		Iterations:  len(samples),
		StartedAt:   started,
		Statistics:  ComputeStatistics(samples),
		AllocsPerOp: allocs,
		BytesPerOp:  bytes,
	}, nil
}

func allocsPerOp(ctx context.Context, measure func() error, n int) (allocs, bytes float64, err error) {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	for i := 0; i < n; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
		}
		if err := measure(); err != nil {
			return 0, 0, err
		}
	}
	runtime.ReadMemStats(&after)
	ops := float64(n)
	return float64(after.Mallocs-before.Mallocs) / ops, float64(after.TotalAlloc-before.TotalAlloc) / ops, nil
}

// Filter 按名称挑选基准，names 为空时返回全部。未知名称返回 NOT_FOUND。
func Filter(benches []Benchmark, names []string) ([]Benchmark, error) {
	if len(names) == 0 {
		return benches, nil
	}
	byName := make(map[string]Benchmark, len(benches))
	for _, b := range benches {
		byName[b.Name] = b
	}
	out := make([]Benchmark, 0, len(names))
	for _, n := range names {
		b, ok := byName[n]
		if !ok {
			return nil, core.Errorf(core.ModuleBench, core.ErrorCodeNotFound, "bench %q not found", n)
		}
		out = append(out, b)
	}
	return out, nil
}
