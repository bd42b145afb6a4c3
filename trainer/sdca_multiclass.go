package trainer

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/model"
	"github.com/rushteam/predbench/pipeline"
)

// SdcaMulticlass 是多分类 SDCA 训练器（一对多）。
//
// 标签列为数值，类别为训练数据中出现的不同标签值（升序）。
// 每个类别训练一个二分类器，最多 NumThreads 个并发；输出分数经 Softmax 归一化。
type SdcaMulticlass struct {
	Options Options
}

// NewSdcaMulticlass 创建多分类训练器。
func NewSdcaMulticlass(opts Options) *SdcaMulticlass {
	return &SdcaMulticlass{Options: opts}
}

func (s *SdcaMulticlass) Name() string { return "trainer.sdca.multiclass" }

// Fit 训练并返回 MulticlassPredictionTransformer。
func (s *SdcaMulticlass) Fit(ctx context.Context, t *core.Table) (pipeline.Transformer, error) {
	opts := s.Options.withDefaults()
	ex, err := extract(t, opts)
	if err != nil {
		return nil, err
	}
	classes := distinct(ex.labels)
	if len(classes) < 2 {
		return nil, core.Errorf(core.ModuleTrainer, core.ErrorCodeInvalidInput,
			"trainer: multiclass training needs at least 2 classes, got %d", len(classes))
	}

	weights := make([][]float64, len(classes))
	biases := make([]float64, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumThreads)
	for k, class := range classes {
		k, class := k, class
		g.Go(func() error {
			y := make([]float64, len(ex.labels))
			for i, l := range ex.labels {
				if l == class {
					y[i] = 1
				} else {
					y[i] = -1
				}
			}
			w, stats, err := solve(gctx, ex.x, y, ex.dims, opts, opts.Seed+int64(k))
			if err != nil {
				return err
			}
			p := unscale(w, ex.scales)
			weights[k] = p.Weights
			biases[k] = p.Bias
			opts.Logger.Debug("sdca class trained",
				zap.Float64("class", class),
				zap.Int("epochs", stats.epochs),
				zap.Float64("gap", stats.gap),
				zap.Bool("converged", stats.converged),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.Logger.Debug("sdca multiclass trained",
		zap.Int("rows", len(ex.x)),
		zap.Int("skipped", ex.skipped),
		zap.Int("classes", len(classes)),
	)
	return &model.MulticlassPredictionTransformer{
		FeatureColumn: opts.FeatureColumn,
		Model: &model.MulticlassPredictor{
			Classes: classes,
			Weights: weights,
			Biases:  biases,
		},
	}, nil
}

func distinct(labels []float64) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Float64s(out)
	return out
}
