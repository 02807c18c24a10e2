package deepgram

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/mkhalish/parley/pkg/errorsx"
	"github.com/mkhalish/parley/pkg/logging"

	listenv1rest "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
)

type Config struct {
	APIKey     string
	Model      string
	Language   string
	SampleRate int
}

// Recognizer transcribes complete utterance buffers through the Deepgram
// prerecorded REST API. Linear16 input at the configured sample rate.
type Recognizer struct {
	cfg        Config
	logger     *slog.Logger
	transcribe func(ctx context.Context, r io.Reader, opts *interfaces.PreRecordedTranscriptionOptions) (string, error)
}

func New(cfg Config) (*Recognizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errorsx.Wrap(errors.New("missing deepgram api key"), errorsx.ReasonConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 8000
	}
	logger := logging.NewComponentLogger(slog.Default(), "deepgram_stt")
	rest := listenv1rest.New(client.NewREST(cfg.APIKey, &interfaces.ClientOptions{}))
	r := &Recognizer{cfg: cfg, logger: logger}
	r.transcribe = func(ctx context.Context, rd io.Reader, opts *interfaces.PreRecordedTranscriptionOptions) (string, error) {
		res, err := rest.FromStream(ctx, rd, opts)
		if err != nil {
			return "", err
		}
		if res == nil || len(res.Results.Channels) == 0 {
			return "", nil
		}
		alts := res.Results.Channels[0].Alternatives
		if len(alts) == 0 {
			return "", nil
		}
		return alts[0].Transcript, nil
	}
	return r, nil
}

func (r *Recognizer) Name() string { return "deepgram_prerecorded" }

func (r *Recognizer) Recognize(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}
	opts := &interfaces.PreRecordedTranscriptionOptions{
		Model:       r.cfg.Model,
		Language:    r.cfg.Language,
		Encoding:    "linear16",
		SampleRate:  r.cfg.SampleRate,
		SmartFormat: true,
	}
	text, err := r.transcribe(ctx, bytes.NewReader(pcm), opts)
	if err != nil {
		r.logger.Error("deepgram_transcribe_error",
			slog.String("error", err.Error()),
			slog.Int("size_bytes", len(pcm)))
		return "", errorsx.Wrap(err, errorsx.ReasonRecognition)
	}
	text = strings.TrimSpace(text)
	r.logger.Debug("transcript_received",
		slog.Int("size_bytes", len(pcm)),
		slog.Int("transcript_len", len(text)))
	return text, nil
}
