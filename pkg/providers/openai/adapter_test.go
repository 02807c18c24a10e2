package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkhalish/parley/pkg/llm"
	"github.com/mkhalish/parley/pkg/resilience"
)

func TestGenerateParsesChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing auth header")
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("unexpected model %v", req["model"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{
				"message":       map[string]any{"role": "assistant", "content": "hi"},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12},
		})
	}))
	defer srv.Close()

	a := NewAdapter("key", "gpt-4o-mini")
	a.BaseURL = srv.URL
	resp, err := a.Generate(context.Background(), llm.Context{
		Messages: []map[string]any{{"role": "user", "content": "hello"}},
	})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if resp.Text != "hi" || resp.FinishReason != "stop" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Usage.TotalTokens != 12 {
		t.Fatalf("expected usage parsed, got %+v", resp.Usage)
	}
}

func TestGenerateRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewAdapter("key", "gpt-4o-mini")
	a.BaseURL = srv.URL
	_, err := a.Generate(context.Background(), llm.Context{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(resilience.RateLimitError); !ok {
		t.Fatalf("expected RateLimitError, got %T", err)
	}
}

func TestGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	a := NewAdapter("key", "gpt-4o-mini")
	a.BaseURL = srv.URL
	if _, err := a.Generate(context.Background(), llm.Context{}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
