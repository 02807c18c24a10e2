package dialogue

import (
	"context"
	"strings"
	"sync"

	"github.com/mkhalish/parley/pkg/errorsx"
	"github.com/mkhalish/parley/pkg/llm"
)

type Role string

const (
	RoleCaller    Role = "caller"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation history. Immutable once recorded.
type Turn struct {
	Role Role
	Text string
}

const defaultMaxHistory = 20

const defaultPrompt = `You are a helpful receptionist taking a phone call. ` +
	`Always reply in the caller's language. Keep replies to one or two short ` +
	`sentences suitable for speech. When appropriate, ask one clarifying or ` +
	`scheduling question. Never mention that you are automated or an AI.`

type Options struct {
	MaxHistory int
	Prompt     string
}

// Engine holds one call's bounded conversation memory and produces replies
// through an LLM adapter. History eviction is strictly FIFO; the bound is a
// soft memory budget, not a correctness requirement.
type Engine struct {
	mu      sync.Mutex
	history []Turn

	maxHistory int
	prompt     string
	adapter    llm.Adapter
}

func NewEngine(adapter llm.Adapter, opts Options) *Engine {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = defaultMaxHistory
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		opts.Prompt = defaultPrompt
	}
	return &Engine{
		maxHistory: opts.MaxHistory,
		prompt:     opts.Prompt,
		adapter:    adapter,
	}
}

// RecordTurn appends a turn and evicts from the front past the bound.
func (e *Engine) RecordTurn(role Role, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, Turn{Role: role, Text: text})
	if over := len(e.history) - e.maxHistory; over > 0 {
		e.history = append(e.history[:0:0], e.history[over:]...)
	}
}

// History returns a copy of the recorded turns, oldest first.
func (e *Engine) History() []Turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Turn(nil), e.history...)
}

// Reply generates the assistant's next line from the recorded history,
// which is expected to already end with the caller's latest turn. A
// whitespace-only model output comes back as the empty string.
func (e *Engine) Reply(ctx context.Context) (string, error) {
	input := llm.Context{Messages: e.messages()}
	resp, err := e.adapter.Generate(ctx, input)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonGeneration)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (e *Engine) messages() []map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]map[string]any, 0, len(e.history)+1)
	out = append(out, map[string]any{"role": "system", "content": e.prompt})
	for _, turn := range e.history {
		role := "assistant"
		if turn.Role == RoleCaller {
			role = "user"
		}
		out = append(out, map[string]any{"role": role, "content": turn.Text})
	}
	return out
}
