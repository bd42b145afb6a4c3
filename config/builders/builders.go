package builders

import (
	"fmt"

	"github.com/rushteam/predbench/config"
	"github.com/rushteam/predbench/feature"
	"github.com/rushteam/predbench/pipeline"
	"github.com/rushteam/predbench/pkg/conv"
	"github.com/rushteam/predbench/trainer"
)

func init() {
	config.Register("transform.concat", BuildConcat)
	config.Register("transform.featurize_text", BuildFeaturizeText)
	config.Register("transform.normalize_minmax", BuildNormalize)
	config.Register("transform.filter", BuildFilter)
	config.Register("trainer.sdca.binary", BuildSdcaBinary)
	config.Register("trainer.sdca.multiclass", BuildSdcaMulticlass)
}

func BuildConcat(cfg map[string]interface{}) (pipeline.Estimator, error) {
	output := conv.ConfigGet(cfg, "output", "Features")
	inputs := conv.SliceAnyToString(cfg["inputs"])
	if len(inputs) == 0 {
		return nil, fmt.Errorf("inputs not found or empty")
	}
	return feature.NewConcatenate(output, inputs...), nil
}

func BuildFeaturizeText(cfg map[string]interface{}) (pipeline.Estimator, error) {
	input := conv.ConfigGet(cfg, "input", "")
	if input == "" {
		return nil, fmt.Errorf("input column is required")
	}
	opts := feature.DefaultTextOptions(conv.ConfigGet(cfg, "output", "Features"), input)
	opts.WordNgram = int(conv.ConfigGetInt64(cfg, "word_ngram", int64(opts.WordNgram)))
	opts.CharNgram = int(conv.ConfigGetInt64(cfg, "char_ngram", int64(opts.CharNgram)))
	opts.KeepCase = conv.ConfigGet(cfg, "keep_case", false)
	opts.KeepDiacritics = conv.ConfigGet(cfg, "keep_diacritics", false)
	opts.DropPunctuation = conv.ConfigGet(cfg, "drop_punctuation", false)
	opts.HashBits = int(conv.ConfigGetInt64(cfg, "hash_bits", 0))
	opts.MaxTerms = int(conv.ConfigGetInt64(cfg, "max_terms", 0))
	if opts.WordNgram < 0 || opts.CharNgram < 0 || opts.HashBits < 0 || opts.HashBits > 24 {
		return nil, fmt.Errorf("invalid text options: word_ngram=%d char_ngram=%d hash_bits=%d",
			opts.WordNgram, opts.CharNgram, opts.HashBits)
	}
	return feature.NewTextFeaturizer(opts), nil
}

func BuildNormalize(cfg map[string]interface{}) (pipeline.Estimator, error) {
	return feature.NewMinMaxNormalizer(conv.ConfigGet(cfg, "column", "Features")), nil
}

func BuildFilter(cfg map[string]interface{}) (pipeline.Estimator, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr is required")
	}
	return feature.NewRowFilter(expr), nil
}

func BuildSdcaBinary(cfg map[string]interface{}) (pipeline.Estimator, error) {
	return trainer.NewSdcaBinary(trainerOptions(cfg)), nil
}

func BuildSdcaMulticlass(cfg map[string]interface{}) (pipeline.Estimator, error) {
	return trainer.NewSdcaMulticlass(trainerOptions(cfg)), nil
}

func trainerOptions(cfg map[string]interface{}) trainer.Options {
	return trainer.Options{
		LabelColumn:          conv.ConfigGet(cfg, "label", ""),
		FeatureColumn:        conv.ConfigGet(cfg, "features", ""),
		NumThreads:           int(conv.ConfigGetInt64(cfg, "num_threads", 1)),
		ConvergenceTolerance: conv.ConfigGetFloat64(cfg, "convergence_tolerance", 0),
		MaxIterations:        int(conv.ConfigGetInt64(cfg, "max_iterations", 0)),
		L2Const:              conv.ConfigGetFloat64(cfg, "l2", 0),
		Seed:                 conv.ConfigGetInt64(cfg, "seed", 1),
		DisableShuffle:       conv.ConfigGet(cfg, "disable_shuffle", false),
		DisableNormalization: conv.ConfigGet(cfg, "disable_normalization", false),
	}
}
