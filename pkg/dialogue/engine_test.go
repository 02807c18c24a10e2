package dialogue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mkhalish/parley/pkg/errorsx"
	mockllm "github.com/mkhalish/parley/pkg/providers/mock"
)

func TestHistoryEvictionIsFIFO(t *testing.T) {
	e := NewEngine(mockllm.NewLLMAdapter(mockllm.LLMConfig{}), Options{MaxHistory: 4})
	for i := 0; i < 7; i++ {
		e.RecordTurn(RoleCaller, fmt.Sprintf("turn %d", i))
	}
	got := e.History()
	if len(got) != 4 {
		t.Fatalf("expected history capped at 4, got %d", len(got))
	}
	if got[0].Text != "turn 3" || got[3].Text != "turn 6" {
		t.Fatalf("expected oldest evicted first, got %+v", got)
	}
}

func TestRecordTurnIgnoresBlank(t *testing.T) {
	e := NewEngine(mockllm.NewLLMAdapter(mockllm.LLMConfig{}), Options{})
	e.RecordTurn(RoleCaller, "   ")
	if len(e.History()) != 0 {
		t.Fatalf("expected blank turn dropped")
	}
}

func TestReplyBuildsMessagesFromHistory(t *testing.T) {
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{ResponseText: "  sure thing  "})
	e := NewEngine(adapter, Options{Prompt: "be brief"})
	e.RecordTurn(RoleAssistant, "hello")
	e.RecordTurn(RoleCaller, "hi, I need an appointment")

	reply, err := e.Reply(context.Background())
	if err != nil {
		t.Fatalf("reply error: %v", err)
	}
	if reply != "sure thing" {
		t.Fatalf("expected trimmed reply, got %q", reply)
	}

	reqs := adapter.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one generate call, got %d", len(reqs))
	}
	msgs := reqs[0].Messages
	if len(msgs) != 3 {
		t.Fatalf("expected system + 2 turns, got %d", len(msgs))
	}
	if msgs[0]["role"] != "system" || msgs[0]["content"] != "be brief" {
		t.Fatalf("unexpected system message: %+v", msgs[0])
	}
	if msgs[1]["role"] != "assistant" || msgs[2]["role"] != "user" {
		t.Fatalf("unexpected role mapping: %+v", msgs)
	}
}

func TestReplyWrapsGenerationErrors(t *testing.T) {
	adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{Err: errors.New("model down")})
	e := NewEngine(adapter, Options{})
	_, err := e.Reply(context.Background())
	if !errorsx.HasReason(err, errorsx.ReasonGeneration) {
		t.Fatalf("expected generation reason, got %s", errorsx.Reason(err))
	}
}
