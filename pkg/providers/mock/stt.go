package mock

import (
	"context"
	"sync"
)

type STTConfig struct {
	Transcript string
	Err        error
}

// Recognizer returns a fixed transcript for every utterance.
type Recognizer struct {
	cfg STTConfig

	mu    sync.Mutex
	calls [][]byte
}

func NewRecognizer(cfg STTConfig) *Recognizer {
	return &Recognizer{cfg: cfg}
}

func (r *Recognizer) Name() string { return "mock_stt" }

func (r *Recognizer) Recognize(ctx context.Context, pcm []byte) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]byte(nil), pcm...))
	r.mu.Unlock()
	if r.cfg.Err != nil {
		return "", r.cfg.Err
	}
	return r.cfg.Transcript, nil
}

// Calls returns a copy of every buffer passed to Recognize.
func (r *Recognizer) Calls() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.calls))
	copy(out, r.calls)
	return out
}
