package mock

import (
	"context"
	"sync"

	"github.com/mkhalish/parley/pkg/llm"
)

type LLMConfig struct {
	ResponseText string
	Err          error
}

type LLMAdapter struct {
	cfg LLMConfig

	mu       sync.Mutex
	requests []llm.Context
}

func NewLLMAdapter(cfg LLMConfig) *LLMAdapter {
	if cfg.ResponseText == "" && cfg.Err == nil {
		cfg.ResponseText = "mock response"
	}
	return &LLMAdapter{cfg: cfg}
}

func (a *LLMAdapter) Name() string { return "mock_llm" }

func (a *LLMAdapter) Generate(ctx context.Context, input llm.Context) (llm.Response, error) {
	a.mu.Lock()
	a.requests = append(a.requests, input)
	a.mu.Unlock()
	if a.cfg.Err != nil {
		return llm.Response{}, a.cfg.Err
	}
	return llm.Response{Text: a.cfg.ResponseText}, nil
}

// Requests returns every context passed to Generate.
func (a *LLMAdapter) Requests() []llm.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]llm.Context(nil), a.requests...)
}
