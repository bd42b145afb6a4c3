package pipeline

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rushteam/predbench/core"
)

// Persistable 是可序列化的 Transformer：TypeName 标识类型，值本身按 JSON 编码。
type Persistable interface {
	Transformer
	TypeName() string
}

// Decoder 把 JSON payload 还原为 Transformer。
type Decoder func(payload json.RawMessage) (Transformer, error)

var (
	decoders   = make(map[string]Decoder)
	decodersMu sync.RWMutex
)

// RegisterDecoder 注册一种 Transformer 的反序列化逻辑，建议在各包的 init 中调用。
func RegisterDecoder(typeName string, d Decoder) {
	if typeName == "" || d == nil {
		return
	}
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[typeName] = d
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type chainEnvelope struct {
	Version int        `json:"version"`
	Stages  []envelope `json:"stages"`
}

const chainVersion = 1

// MarshalChain 把拟合好的变换链编码为 JSON。
func MarshalChain(c *TransformerChain) ([]byte, error) {
	if c == nil {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeInvalidInput, "pipeline: nil chain")
	}
	out := chainEnvelope{Version: chainVersion, Stages: make([]envelope, 0, len(c.Transformers))}
	for _, tr := range c.Transformers {
		p, ok := tr.(Persistable)
		if !ok {
			return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeNotSupported, "pipeline: transformer %s is not persistable", tr.Name())
		}
		payload, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", p.TypeName(), err)
		}
		out.Stages = append(out.Stages, envelope{Type: p.TypeName(), Payload: payload})
	}
	return json.Marshal(out)
}

// UnmarshalChain 从 JSON 还原变换链。
func UnmarshalChain(raw []byte) (*TransformerChain, error) {
	var in chainEnvelope
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("parse chain: %w", err)
	}
	if in.Version != chainVersion {
		return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeNotSupported, "pipeline: unsupported chain version %d", in.Version)
	}
	transformers := make([]Transformer, 0, len(in.Stages))
	for _, st := range in.Stages {
		decodersMu.RLock()
		d, ok := decoders[st.Type]
		decodersMu.RUnlock()
		if !ok {
			return nil, core.Errorf(core.ModulePipeline, core.ErrorCodeNotSupported, "pipeline: no decoder for %q", st.Type)
		}
		tr, err := d(st.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", st.Type, err)
		}
		transformers = append(transformers, tr)
	}
	return &TransformerChain{Transformers: transformers}, nil
}
