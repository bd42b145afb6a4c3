package feature

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rushteam/predbench/core"
	"github.com/rushteam/predbench/pipeline"
)

const typeText = "transform.featurize_text"

func init() {
	pipeline.RegisterDecoder(typeText, func(raw json.RawMessage) (pipeline.Transformer, error) {
		t := &TextTransformer{}
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, err
		}
		t.index()
		return t, nil
	})
}

const (
	startMarker = '\x02'
	endMarker   = '\x03'
)

// TextOptions 是文本特征化的配置。
type TextOptions struct {
	Output          string `json:"output"`
	Input           string `json:"input"`
	WordNgram       int    `json:"word_ngram"`       // 词 n-gram 最大长度，0 表示不产出词特征
	CharNgram       int    `json:"char_ngram"`       // 字符 n-gram 长度，0 表示不产出字符特征
	KeepCase        bool   `json:"keep_case"`        // 默认转小写
	KeepDiacritics  bool   `json:"keep_diacritics"`  // 默认去掉变音符号
	DropPunctuation bool   `json:"drop_punctuation"` // 默认保留标点
	HashBits        int    `json:"hash_bits"`        // >0 时使用哈希桶，不建词典
	MaxTerms        int    `json:"max_terms"`        // 词典模式下每类 n-gram 的上限，0 不限
}

// DefaultTextOptions 返回默认配置：词 1~2 gram + 字符 3 gram，小写，去变音符号。
func DefaultTextOptions(output, input string) TextOptions {
	return TextOptions{
		Output:    output,
		Input:     input,
		WordNgram: 2,
		CharNgram: 3,
	}
}

// TextFeaturizer 把文本列转为定长数值向量（词频 + 字符 n-gram 频次，L2 归一化）。
type TextFeaturizer struct {
	Options TextOptions
}

// NewTextFeaturizer 创建文本特征化估计器。
func NewTextFeaturizer(opts TextOptions) *TextFeaturizer {
	return &TextFeaturizer{Options: opts}
}

func (f *TextFeaturizer) Name() string { return typeText }

// Fit 在词典模式下从训练数据收集 n-gram 词典；哈希模式下无需拟合。
func (f *TextFeaturizer) Fit(ctx context.Context, t *core.Table) (pipeline.Transformer, error) {
	opts := f.Options
	if opts.Output == "" || opts.Input == "" {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "featurize_text: output and input are required")
	}
	if opts.WordNgram <= 0 && opts.CharNgram <= 0 {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "featurize_text: word_ngram or char_ngram must be positive")
	}
	pos, _, err := t.Schema.Lookup(opts.Input, core.KindText)
	if err != nil {
		return nil, err
	}
	tr := &TextTransformer{Options: opts}
	if opts.HashBits > 0 {
		if opts.HashBits > 24 {
			return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "featurize_text: hash_bits %d too large", opts.HashBits)
		}
		tr.index()
		return tr, nil
	}

	words := newVocab(opts.MaxTerms)
	chars := newVocab(opts.MaxTerms)
	for i, row := range t.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := tr.normalize(row[pos].Text)
		tr.eachWordGram(text, words.add)
		tr.eachCharGram(text, chars.add)
	}
	tr.WordVocab = words.terms
	tr.CharVocab = chars.terms
	tr.index()
	return tr, nil
}

type vocab struct {
	max   int
	terms []string
	seen  map[string]struct{}
}

func newVocab(max int) *vocab {
	return &vocab{max: max, seen: make(map[string]struct{})}
}

func (v *vocab) add(term string) {
	if _, ok := v.seen[term]; ok {
		return
	}
	if v.max > 0 && len(v.terms) >= v.max {
		return
	}
	v.seen[term] = struct{}{}
	v.terms = append(v.terms, term)
}

// TextTransformer 是拟合后的文本特征化变换。
// 输出向量布局：[词 n-gram 块 | 字符 n-gram 块]。
type TextTransformer struct {
	Options   TextOptions `json:"options"`
	WordVocab []string    `json:"word_vocab,omitempty"`
	CharVocab []string    `json:"char_vocab,omitempty"`

	wordIndex map[string]int
	charIndex map[string]int
}

// NewTextTransformer 由已有词典创建变换，索引在这里一次建好，之后只读。
func NewTextTransformer(opts TextOptions, words, chars []string) *TextTransformer {
	t := &TextTransformer{Options: opts, WordVocab: words, CharVocab: chars}
	t.index()
	return t
}

func (t *TextTransformer) Name() string        { return typeText }
func (t *TextTransformer) TypeName() string    { return typeText }
func (t *TextTransformer) Kind() pipeline.Kind { return pipeline.KindTransform }

func (t *TextTransformer) index() {
	t.wordIndex = make(map[string]int, len(t.WordVocab))
	for i, w := range t.WordVocab {
		t.wordIndex[w] = i
	}
	t.charIndex = make(map[string]int, len(t.CharVocab))
	for i, c := range t.CharVocab {
		t.charIndex[c] = i
	}
}

// Dims 返回词块和字符块的维度。
func (t *TextTransformer) Dims() (words, chars int) {
	if t.Options.HashBits > 0 {
		n := 1 << t.Options.HashBits
		if t.Options.WordNgram > 0 {
			words = n
		}
		if t.Options.CharNgram > 0 {
			chars = n
		}
		return words, chars
	}
	return len(t.WordVocab), len(t.CharVocab)
}

func (t *TextTransformer) Bind(in *core.Schema) (*core.Schema, pipeline.RowFunc, error) {
	pos, _, err := in.Lookup(t.Options.Input, core.KindText)
	if err != nil {
		return nil, nil, err
	}
	if len(t.wordIndex) != len(t.WordVocab) || len(t.charIndex) != len(t.CharVocab) {
		return nil, nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput,
			"featurize_text: vocabulary is not indexed, use NewTextTransformer")
	}
	nw, nc := t.Dims()
	out := in.Append(core.Column{Name: t.Options.Output, Kind: core.KindVector, Size: nw + nc})
	return out, func(row core.Row) (core.Row, error) {
		return pipeline.AppendColumn(row, core.Vector(t.Featurize(row[pos].Text))), nil
	}, nil
}

// Featurize 计算单条文本的特征向量。
func (t *TextTransformer) Featurize(text string) []float64 {
	nw, nc := t.Dims()
	vec := make([]float64, nw+nc)
	text = t.normalize(text)
	t.eachWordGram(text, func(term string) {
		if i, ok := t.slot(term, t.wordIndex, nw); ok {
			vec[i]++
		}
	})
	t.eachCharGram(text, func(term string) {
		if i, ok := t.slot(term, t.charIndex, nc); ok {
			vec[nw+i]++
		}
	})
	l2Normalize(vec)
	return vec
}

func (t *TextTransformer) slot(term string, index map[string]int, size int) (int, bool) {
	if size == 0 {
		return 0, false
	}
	if t.Options.HashBits > 0 {
		h := fnv.New32a()
		h.Write([]byte(term))
		return int(h.Sum32() & uint32(size-1)), true
	}
	i, ok := index[term]
	return i, ok
}

func (t *TextTransformer) normalize(s string) string {
	steps := make([]transform.Transformer, 0, 4)
	if !t.Options.KeepDiacritics {
		steps = append(steps, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}
	if t.Options.DropPunctuation {
		steps = append(steps, runes.Remove(runes.In(unicode.P)))
	}
	if len(steps) > 0 {
		if out, _, err := transform.String(transform.Chain(steps...), s); err == nil {
			s = out
		}
	}
	if !t.Options.KeepCase {
		s = cases.Lower(language.Und).String(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func (t *TextTransformer) eachWordGram(text string, fn func(string)) {
	n := t.Options.WordNgram
	if n <= 0 {
		return
	}
	tokens := strings.Fields(text)
	for i := range tokens {
		for k := 1; k <= n && i+k <= len(tokens); k++ {
			fn(strings.Join(tokens[i:i+k], "|"))
		}
	}
}

func (t *TextTransformer) eachCharGram(text string, fn func(string)) {
	n := t.Options.CharNgram
	if n <= 0 {
		return
	}
	rs := make([]rune, 0, len(text)+2)
	rs = append(rs, startMarker)
	rs = append(rs, []rune(text)...)
	rs = append(rs, endMarker)
	for i := 0; i+n <= len(rs); i++ {
		fn(string(rs[i : i+n]))
	}
}

func l2Normalize(vec []float64) {
	sum := 0.0
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
