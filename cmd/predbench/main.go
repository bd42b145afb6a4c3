// Command predbench 运行单行预测延迟基准并输出统计结果。
//
//	predbench -iterations 10000 -format markdown
//	predbench -config config.yaml -only MakeIrisPredictions -sqlite bench.db
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/predbench/bench"
	"github.com/rushteam/predbench/benchmarks"
	"github.com/rushteam/predbench/data"
	"github.com/rushteam/predbench/pipeline"
	"github.com/rushteam/predbench/pkg/logger"
	"github.com/rushteam/predbench/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "predbench: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML run config")
	dataDir := flag.String("data-dir", "", "directory holding the datasets (default: nearest testdata)")
	warmup := flag.Int("warmup", 0, "warmup calls per benchmark")
	iterations := flag.Int("iterations", 0, "timed calls per benchmark")
	minTime := flag.Duration("min-time", 0, "keep measuring for at least this long")
	only := flag.String("only", "", "comma separated benchmark names")
	format := flag.String("format", "", "output format: markdown|json")
	out := flag.String("out", "", "write results to file instead of stdout")
	sqlitePath := flag.String("sqlite", "", "append results to this SQLite database")
	logLevel := flag.String("log-level", "", "debug|info|warn|error")
	flag.Parse()

	cfg, err := loadRunConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// 只有显式传入的参数覆盖配置文件
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = *dataDir
		case "warmup":
			cfg.Warmup = *warmup
		case "iterations":
			cfg.Iterations = *iterations
		case "min-time":
			cfg.MinTime = *minTime
		case "only":
			cfg.Only = splitList(*only)
		case "format":
			cfg.Format = *format
		case "out":
			cfg.Out = *out
		case "sqlite":
			cfg.SQLite = *sqlitePath
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	suite, err := newSuite(ctx, cfg, log)
	if err != nil {
		return err
	}
	if suite.Store != nil {
		defer suite.Store.Store.Close()
	}

	benches, err := bench.Filter(suite.Benchmarks(), cfg.Only)
	if err != nil {
		return err
	}
	runner := &bench.Runner{
		Warmup:     cfg.Warmup,
		Iterations: cfg.Iterations,
		MinTime:    cfg.MinTime,
		Logger:     log,
	}
	results, err := runner.Run(ctx, benches)
	if err != nil {
		return err
	}

	if err := writeResults(cfg, results); err != nil {
		return err
	}
	if cfg.SQLite != "" {
		if err := saveResults(ctx, cfg, results); err != nil {
			return err
		}
		log.Info("results saved", zap.String("sqlite", cfg.SQLite))
	}
	return nil
}

func newSuite(ctx context.Context, cfg RunConfig, log *zap.Logger) (*benchmarks.Suite, error) {
	dir := cfg.DataDir
	if dir == "" {
		found, err := data.FindDataDir(data.DefaultDataDir)
		if err != nil {
			return nil, err
		}
		dir = found
	}
	catalog, err := data.NewCatalog(dir, 0)
	if err != nil {
		return nil, err
	}

	var suite *benchmarks.Suite
	if cfg.Pipelines != "" {
		f, err := pipeline.LoadFromYAML(cfg.Pipelines)
		if err != nil {
			return nil, fmt.Errorf("load pipelines: %w", err)
		}
		suite, err = benchmarks.NewSuiteWithPipelines(catalog, f, log)
		if err != nil {
			return nil, err
		}
	} else {
		suite, err = benchmarks.NewSuite(catalog, log)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Redis.Addr != "" {
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		suite.Store = store.NewModelStore(rs, cfg.Redis.Prefix, cfg.Redis.TTL)
	}
	return suite, nil
}

func writeResults(cfg RunConfig, results []bench.Result) (err error) {
	var w io.Writer = os.Stdout
	if cfg.Out != "" {
		f, err := os.Create(cfg.Out)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if cfg.Format == "json" {
		return bench.WriteJSON(w, results)
	}
	return bench.WriteMarkdown(w, results)
}

func saveResults(ctx context.Context, cfg RunConfig, results []bench.Result) error {
	sink, err := bench.OpenSQLite(cfg.SQLite)
	if err != nil {
		return err
	}
	defer sink.Close()
	runID := cfg.RunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}
	return sink.Save(ctx, runID, results)
}
