package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mkhalish/parley/pkg/errorsx"
	"github.com/mkhalish/parley/pkg/logging"
	"github.com/mkhalish/parley/pkg/resilience"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

type Config struct {
	APIKey       string
	VoiceID      string
	ModelID      string
	OutputFormat string
	BaseURL      string
}

// Synthesizer renders text through the ElevenLabs REST API. The default
// output format is raw 16-bit linear PCM at 8 kHz so the result can be
// companded for the telephony wire without resampling.
type Synthesizer struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func New(cfg Config) (*Synthesizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.VoiceID) == "" {
		return nil, errorsx.Wrap(errors.New("missing elevenlabs api key or voice id"), errorsx.ReasonConfiguration)
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_turbo_v2_5"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "pcm_8000"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Synthesizer{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logging.NewComponentLogger(slog.Default(), "elevenlabs_tts"),
	}, nil
}

func (s *Synthesizer) Name() string { return "elevenlabs_rest" }

func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	payload := map[string]any{
		"text":     text,
		"model_id": s.cfg.ModelID,
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.8,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
	}
	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", s.cfg.BaseURL, s.cfg.VoiceID, s.cfg.OutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
	}
	req.Header.Set("xi-api-key", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		msg, _ := io.ReadAll(resp.Body)
		s.logger.Error("elevenlabs_rate_limit", slog.String("status", resp.Status))
		return nil, errorsx.Wrap(resilience.RateLimitError{Provider: "elevenlabs", Message: string(msg)}, errorsx.ReasonSynthesis)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, errorsx.Wrap(fmt.Errorf("elevenlabs %s: %s", resp.Status, string(msg)), errorsx.ReasonSynthesis)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSynthesis)
	}
	s.logger.Debug("synthesis_complete",
		slog.Int("text_len", len(text)),
		slog.Int("audio_bytes", len(audio)))
	return audio, nil
}
