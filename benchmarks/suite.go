// Package benchmarks 定义三条被测 pipeline（iris 多分类、sentiment 文本二分类、
// breast_cancer 数值二分类），以及只计时单行预测的基准。
//
// 训练和引擎创建都在 Setup* 中完成，Make* 只调用一次 Predict。
package benchmarks

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushteam/predbench/bench"
	"github.com/rushteam/predbench/config"
	_ "github.com/rushteam/predbench/config/builders"
	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/data"
	"github.com/rushteam/predbench/engine"
	"github.com/rushteam/predbench/pipeline"
	"github.com/rushteam/predbench/store"
)

//go:embed pipelines.yaml
var defaultPipelines []byte

const (
	PipelineIris         = "iris"
	PipelineSentiment    = "sentiment"
	PipelineBreastCancer = "breast_cancer"
)

// ErrNotSetup 表示在 Setup 之前调用了 Make*。
var ErrNotSetup = core.NewDomainError(core.ModuleBench, core.ErrorCodeUnavailable, "benchmarks: pipeline is not set up")

// 固定的预测样例。
var (
	IrisExample = IrisData{
		SepalLength: 3.3,
		SepalWidth:  1.6,
		PetalLength: 0.2,
		PetalWidth:  5.1,
	}
	SentimentExample = SentimentData{
		SentimentText: "Not a big fan of this.",
	}
	BreastCancerExample = BreastCancerData{
		Features: []float64{5, 1, 1, 1, 2, 1, 3, 1, 1},
	}
)

// Suite 持有三条 pipeline 的预测引擎。不是并发安全的。
type Suite struct {
	Catalog *data.Catalog
	// Store 非空时先尝试读取已保存的模型，读不到再训练并保存。
	Store  *store.ModelStore
	Logger *zap.Logger

	pipelines *pipeline.File

	iris         *engine.PredictionEngine[IrisData, IrisPrediction]
	sentiment    *engine.PredictionEngine[SentimentData, SentimentPrediction]
	breastCancer *engine.PredictionEngine[BreastCancerData, BreastCancerPrediction]
}

// NewSuite 使用内置 pipeline 定义创建 Suite。
func NewSuite(catalog *data.Catalog, logger *zap.Logger) (*Suite, error) {
	f, err := pipeline.ParseYAML(defaultPipelines)
	if err != nil {
		return nil, fmt.Errorf("embedded pipelines: %w", err)
	}
	return NewSuiteWithPipelines(catalog, f, logger)
}

// NewSuiteWithPipelines 使用自定义 pipeline 定义创建 Suite，
// 文件中必须包含 iris、sentiment、breast_cancer 三条 pipeline。
func NewSuiteWithPipelines(catalog *data.Catalog, f *pipeline.File, logger *zap.Logger) (*Suite, error) {
	if catalog == nil {
		return nil, core.Errorf(core.ModuleBench, core.ErrorCodeInvalidInput, "benchmarks: catalog is nil")
	}
	// 先确认三条 pipeline 都存在，再逐条校验
	cfgs := make([]*pipeline.Config, 0, 3)
	for _, name := range []string{PipelineIris, PipelineSentiment, PipelineBreastCancer} {
		cfg, err := f.Lookup(name)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, cfg)
	}
	for _, cfg := range cfgs {
		if err := config.ValidatePipelineConfig(cfg); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suite{Catalog: catalog, Logger: logger, pipelines: f}, nil
}

// SetupIrisPipeline 训练 iris 模型并创建预测引擎。
func (s *Suite) SetupIrisPipeline(ctx context.Context) error {
	chain, schema, err := s.fit(ctx, PipelineIris)
	if err != nil {
		return err
	}
	in, err := irisInput(schema)
	if err != nil {
		return err
	}
	eng, err := engine.CreatePredictionEngine(chain, in, irisOutput)
	if err != nil {
		return err
	}
	s.iris = eng
	return nil
}

// SetupSentimentPipeline 训练 sentiment 模型并创建预测引擎。
func (s *Suite) SetupSentimentPipeline(ctx context.Context) error {
	chain, schema, err := s.fit(ctx, PipelineSentiment)
	if err != nil {
		return err
	}
	in, err := sentimentInput(schema)
	if err != nil {
		return err
	}
	eng, err := engine.CreatePredictionEngine(chain, in, sentimentOutput)
	if err != nil {
		return err
	}
	s.sentiment = eng
	return nil
}

// SetupBreastCancerPipeline 训练 breast_cancer 模型并创建预测引擎。
func (s *Suite) SetupBreastCancerPipeline(ctx context.Context) error {
	chain, schema, err := s.fit(ctx, PipelineBreastCancer)
	if err != nil {
		return err
	}
	in, err := breastCancerInput(schema)
	if err != nil {
		return err
	}
	eng, err := engine.CreatePredictionEngine(chain, in, breastCancerOutput)
	if err != nil {
		return err
	}
	s.breastCancer = eng
	return nil
}

// MakeIrisPredictions 对固定样例做一次预测。
func (s *Suite) MakeIrisPredictions() (IrisPrediction, error) {
	if s.iris == nil {
		return IrisPrediction{}, ErrNotSetup
	}
	return s.iris.Predict(IrisExample)
}

// MakeSentimentPredictions 对固定样例做一次预测。
func (s *Suite) MakeSentimentPredictions() (SentimentPrediction, error) {
	if s.sentiment == nil {
		return SentimentPrediction{}, ErrNotSetup
	}
	return s.sentiment.Predict(SentimentExample)
}

// MakeBreastCancerPredictions 对固定样例做一次预测。
func (s *Suite) MakeBreastCancerPredictions() (BreastCancerPrediction, error) {
	if s.breastCancer == nil {
		return BreastCancerPrediction{}, ErrNotSetup
	}
	return s.breastCancer.Predict(BreastCancerExample)
}

// Benchmarks 返回三组 Setup/Measure，供 bench.Runner 使用。
func (s *Suite) Benchmarks() []bench.Benchmark {
	return []bench.Benchmark{
		{
			Name:  "MakeIrisPredictions",
			Setup: s.SetupIrisPipeline,
			Measure: func() error {
				_, err := s.MakeIrisPredictions()
				return err
			},
		},
		{
			Name:  "MakeSentimentPredictions",
			Setup: s.SetupSentimentPipeline,
			Measure: func() error {
				_, err := s.MakeSentimentPredictions()
				return err
			},
		},
		{
			Name:  "MakeBreastCancerPredictions",
			Setup: s.SetupBreastCancerPipeline,
			Measure: func() error {
				_, err := s.MakeBreastCancerPredictions()
				return err
			},
		},
	}
}

type loggerSetter interface {
	SetLogger(*zap.Logger)
}

// fit 构建 pipeline 并拟合，返回模型和输入 schema。
// 配置了 Store 时优先复用已保存的模型。
func (s *Suite) fit(ctx context.Context, name string) (*pipeline.TransformerChain, *core.Schema, error) {
	cfg, err := s.pipelines.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	p, err := config.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	schema, err := p.Loader.Schema()
	if err != nil {
		return nil, nil, err
	}
	log := s.Logger.With(zap.String("pipeline", name))

	if s.Store != nil {
		chain, err := s.Store.Load(ctx, name)
		switch {
		case err == nil:
			log.Info("model loaded from store", zap.String("store", s.Store.Store.Name()))
			return chain, schema, nil
		case !core.IsStoreNotFound(err):
			return nil, nil, err
		}
	}

	table, err := s.Catalog.Load(ctx, p.Dataset, p.Loader)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range p.Chain.Estimators {
		if ls, ok := e.(loggerSetter); ok {
			ls.SetLogger(log)
		}
	}
	chain, err := p.Chain.FitChain(ctx, table)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline %s: %w", name, err)
	}
	log.Info("model trained", zap.Int("rows", table.Len()), zap.Int("stages", len(chain.Transformers)))

	if s.Store != nil {
		if err := s.Store.Save(ctx, name, chain); err != nil {
			return nil, nil, err
		}
	}
	return chain, schema, nil
}
