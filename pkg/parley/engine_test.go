package parley

import (
	"context"
	"testing"
	"time"

	"github.com/mkhalish/parley/pkg/frames"
	transportmock "github.com/mkhalish/parley/pkg/transports/mock"
)

func testConfig() Config {
	return Config{
		Session: SessionConfig{
			SilenceMS:       30,
			GuardMS:         5,
			FrameBytes:      320,
			FrameIntervalMS: 1,
			SourceFormat:    "mulaw",
			Greeting:        "Hello there.",
		},
		Vendors: VendorsConfig{
			STT: VendorConfig{Provider: "mock", Settings: map[string]any{"transcript": "I need an appointment."}},
			TTS: VendorConfig{Provider: "mock"},
			LLM: VendorConfig{Provider: "mock", Settings: map[string]any{"response_text": "Of course."}},
		},
		Transports:  TransportsConfig{Provider: "mock"},
		Environment: "test",
		LogLevel:    "error",
	}
}

func collectAudio(t *testing.T, tr *transportmock.Transport, atLeast int, within time.Duration) int {
	t.Helper()
	got := 0
	deadline := time.After(within)
	for got < atLeast {
		select {
		case f, ok := <-tr.Sent():
			if !ok {
				t.Fatalf("transport closed after %d frames, want %d", got, atLeast)
			}
			if f.Kind() == frames.KindAudio {
				got++
			}
		case <-deadline:
			t.Fatalf("received %d audio frames within %v, want at least %d", got, within, atLeast)
		}
	}
	return got
}

func TestEngineFullCallFlow(t *testing.T) {
	tr := transportmock.New()
	e, err := NewEngine(EngineOptions{Config: testConfig(), Transport: tr})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = e.Stop() }()

	streamID := "MZ100"
	tr.Push(frames.NewSystemFrame(streamID, time.Now().UnixNano(), frames.SystemCallStart, map[string]string{
		frames.MetaCallSID: "CA100",
	}))

	// Greeting playback.
	collectAudio(t, tr, 1, 2*time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for e.ActiveCalls() != 1 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if got := e.ActiveCalls(); got != 1 {
		t.Fatalf("active calls = %d, want 1", got)
	}

	// One caller utterance; wait for the spoken reply.
	for i := 0; i < 10; i++ {
		tr.Push(frames.NewAudioFrame(streamID, time.Now().UnixNano(), make([]byte, 160), 8000, 1, nil))
	}
	collectAudio(t, tr, 1, 2*time.Second)

	tr.Push(frames.NewSystemFrame(streamID, time.Now().UnixNano(), frames.SystemCallEnd, map[string]string{
		frames.MetaCallEndReason: "completed",
	}))
	deadline = time.Now().Add(2 * time.Second)
	for e.ActiveCalls() != 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if got := e.ActiveCalls(); got != 0 {
		t.Fatalf("active calls after hangup = %d, want 0", got)
	}
}

func TestEngineIsolatesConcurrentCalls(t *testing.T) {
	tr := transportmock.New()
	e, err := NewEngine(EngineOptions{Config: testConfig(), Transport: tr})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = e.Stop() }()

	tr.Push(frames.NewSystemFrame("MZa", time.Now().UnixNano(), frames.SystemCallStart, map[string]string{frames.MetaCallSID: "CAa"}))
	tr.Push(frames.NewSystemFrame("MZb", time.Now().UnixNano(), frames.SystemCallStart, map[string]string{frames.MetaCallSID: "CAb"}))

	deadline := time.Now().Add(2 * time.Second)
	for e.ActiveCalls() != 2 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if got := e.ActiveCalls(); got != 2 {
		t.Fatalf("active calls = %d, want 2", got)
	}

	// Hanging up one call leaves the other running.
	tr.Push(frames.NewSystemFrame("MZa", time.Now().UnixNano(), frames.SystemCallEnd, nil))
	deadline = time.Now().Add(2 * time.Second)
	for e.ActiveCalls() != 1 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if got := e.ActiveCalls(); got != 1 {
		t.Fatalf("active calls after one hangup = %d, want 1", got)
	}
}

func TestNewEngineRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Vendors.STT.Provider = "nope"
	if _, err := NewEngine(EngineOptions{Config: cfg, Transport: transportmock.New()}); err == nil {
		t.Fatal("expected error for unregistered stt provider")
	}
}

func TestNewEngineRejectsBadSourceFormat(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SourceFormat = "opus"
	if _, err := NewEngine(EngineOptions{Config: cfg, Transport: transportmock.New()}); err == nil {
		t.Fatal("expected error for unknown source format")
	}
}
