package deepgram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mkhalish/parley/pkg/errorsx"

	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatalf("expected error without api key")
	}
	if !errorsx.HasReason(err, errorsx.ReasonConfiguration) {
		t.Fatalf("expected configuration reason, got %s", errorsx.Reason(err))
	}
}

func TestRecognizeEmptyBufferShortCircuits(t *testing.T) {
	r := &Recognizer{logger: slog.Default()}
	r.transcribe = func(context.Context, io.Reader, *interfaces.PreRecordedTranscriptionOptions) (string, error) {
		t.Fatalf("transcribe must not be called for empty input")
		return "", nil
	}
	text, err := r.Recognize(context.Background(), nil)
	if err != nil || text != "" {
		t.Fatalf("expected empty no-op, got %q %v", text, err)
	}
}

func TestRecognizeTrimsAndPassesOptions(t *testing.T) {
	var gotOpts *interfaces.PreRecordedTranscriptionOptions
	r := &Recognizer{cfg: Config{Model: "nova-2", Language: "en", SampleRate: 8000}, logger: slog.Default()}
	r.transcribe = func(_ context.Context, _ io.Reader, opts *interfaces.PreRecordedTranscriptionOptions) (string, error) {
		gotOpts = opts
		return "  hello there  ", nil
	}
	text, err := r.Recognize(context.Background(), []byte{0, 0})
	if err != nil {
		t.Fatalf("recognize error: %v", err)
	}
	if text != "hello there" {
		t.Fatalf("expected trimmed transcript, got %q", text)
	}
	if gotOpts == nil || gotOpts.Encoding != "linear16" || gotOpts.SampleRate != 8000 {
		t.Fatalf("unexpected options: %+v", gotOpts)
	}
}

func TestRecognizeWrapsErrors(t *testing.T) {
	r := &Recognizer{logger: slog.Default()}
	r.transcribe = func(context.Context, io.Reader, *interfaces.PreRecordedTranscriptionOptions) (string, error) {
		return "", errors.New("upstream down")
	}
	_, err := r.Recognize(context.Background(), []byte{0, 0})
	if !errorsx.HasReason(err, errorsx.ReasonRecognition) {
		t.Fatalf("expected recognition reason, got %s", errorsx.Reason(err))
	}
}
