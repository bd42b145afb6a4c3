package trainer

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/model"
	"github.com/rushteam/predbench/pipeline"
)

// SdcaBinary 是基于逻辑损失的二分类 SDCA 训练器。
// 标签列可以是 Bool，也可以是数值（> 0 为正类）。
type SdcaBinary struct {
	Options Options
}

// NewSdcaBinary 创建二分类训练器。
func NewSdcaBinary(opts Options) *SdcaBinary {
	return &SdcaBinary{Options: opts}
}

func (s *SdcaBinary) Name() string { return "trainer.sdca.binary" }

// Fit 训练并返回 BinaryPredictionTransformer。
func (s *SdcaBinary) Fit(ctx context.Context, t *core.Table) (pipeline.Transformer, error) {
	opts := s.Options.withDefaults()
	ex, err := extract(t, opts)
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(ex.labels))
	var pos, neg int
	for i, l := range ex.labels {
		if l > 0 {
			y[i] = 1
			pos++
		} else {
			y[i] = -1
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, core.Errorf(core.ModuleTrainer, core.ErrorCodeInvalidInput,
			"trainer: binary training needs both classes (positive=%d negative=%d)", pos, neg)
	}

	w, stats, err := solve(ctx, ex.x, y, ex.dims, opts, opts.Seed)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("sdca binary trained",
		zap.Int("rows", len(ex.x)),
		zap.Int("skipped", ex.skipped),
		zap.Int("epochs", stats.epochs),
		zap.Float64("gap", stats.gap),
		zap.Bool("converged", stats.converged),
	)
	return &model.BinaryPredictionTransformer{
		FeatureColumn: opts.FeatureColumn,
		Model:         unscale(w, ex.scales),
	}, nil
}

// unscale 把归一化空间中的权重折算回原始特征空间：w_raw = w * scale。
func unscale(w []float64, scales []float64) *model.BinaryPredictor {
	weights := make([]float64, len(scales))
	for j := range scales {
		weights[j] = w[j] * scales[j]
	}
	return &model.BinaryPredictor{Weights: weights, Bias: w[len(scales)]}
}

type solveStats struct {
	epochs    int
	gap       float64
	converged bool
}

const (
	newtonSteps = 5
	dualEps     = 1e-12
)

// solve 在 (x, y∈{-1,+1}) 上用 SDCA 最小化
//
//	P(w) = 1/n Σ log(1+exp(-y_i w·x_i)) + λ/2 ||w||²
//
// 偏置作为恒为 1 的附加特征参与训练，返回长度 dims+1 的权重（最后一个是偏置）。
// 对偶变量 a_i ∈ (0,1)，满足 w = 1/(λn) Σ a_i y_i x_i。
// 每轮结束计算对偶间隙 P(w)-D(a)，相对间隙小于容忍度即收敛。
func solve(ctx context.Context, x [][]float64, y []float64, dims int, opts Options, seed int64) ([]float64, solveStats, error) {
	n := len(x)
	lambda := opts.L2Const
	if lambda <= 0 {
		lambda = autoL2(n)
	}
	lambdaN := lambda * float64(n)

	w := make([]float64, dims+1)
	alpha := make([]float64, n)
	norms := make([]float64, n)
	for i, row := range x {
		sq := 1.0 // 偏置特征
		for _, v := range row {
			sq += v * v
		}
		norms[i] = sq
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))

	var stats solveStats
	for epoch := 1; epoch <= opts.MaxIterations; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if !opts.DisableShuffle {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		for _, i := range order {
			row := x[i]
			margin := w[dims]
			for j, v := range row {
				margin += w[j] * v
			}
			delta := dualStep(alpha[i], y[i]*margin, norms[i]/lambdaN)
			if delta == 0 {
				continue
			}
			alpha[i] += delta
			step := delta * y[i] / lambdaN
			for j, v := range row {
				w[j] += step * v
			}
			w[dims] += step
		}

		primal, dual := objectives(x, y, w, alpha, lambda)
		stats.epochs = epoch
		stats.gap = primal - dual
		if primal > 0 && stats.gap/primal < opts.ConvergenceTolerance {
			stats.converged = true
			break
		}
	}
	return w, stats, nil
}

// dualStep 用牛顿法求解单个对偶坐标的最优增量 δ：
//
//	log((1-a')/a') - ym - δq = 0,  a' = a+δ
//
// 初值取忽略二次项时的闭式解 a' = sigmoid(-ym)。
func dualStep(a, ym, q float64) float64 {
	target := model.Sigmoid(-ym)
	next := clamp(target)
	for k := 0; k < newtonSteps; k++ {
		delta := next - a
		g := math.Log((1-next)/next) - ym - delta*q
		h := -1/(next*(1-next)) - q
		next = clamp(next - g/h)
	}
	return next - a
}

func clamp(a float64) float64 {
	if a < dualEps {
		return dualEps
	}
	if a > 1-dualEps {
		return 1 - dualEps
	}
	return a
}

// objectives 计算原始目标与对偶目标。
func objectives(x [][]float64, y, w, alpha []float64, lambda float64) (primal, dual float64) {
	dims := len(w) - 1
	n := float64(len(x))
	sq := 0.0
	for _, v := range w {
		sq += v * v
	}
	loss, entropy := 0.0, 0.0
	for i, row := range x {
		margin := w[dims]
		for j, v := range row {
			margin += w[j] * v
		}
		loss += logLoss(y[i] * margin)
		entropy += binaryEntropy(alpha[i])
	}
	reg := lambda / 2 * sq
	return loss/n + reg, entropy/n - reg
}

// logLoss 计算 log(1+exp(-z))，对大 |z| 数值稳定。
func logLoss(z float64) float64 {
	if z > 0 {
		return math.Log1p(math.Exp(-z))
	}
	return -z + math.Log1p(math.Exp(z))
}

func binaryEntropy(a float64) float64 {
	if a <= 0 || a >= 1 {
		return 0
	}
	return -a*math.Log(a) - (1-a)*math.Log(1-a)
}
