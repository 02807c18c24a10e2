package parley

import (
	"fmt"
	"strings"

	"github.com/mkhalish/parley/pkg/adapters/stt"
	"github.com/mkhalish/parley/pkg/adapters/tts"
	"github.com/mkhalish/parley/pkg/configutil"
	"github.com/mkhalish/parley/pkg/llm"
	"github.com/mkhalish/parley/pkg/providers/deepgram"
	"github.com/mkhalish/parley/pkg/providers/elevenlabs"
	"github.com/mkhalish/parley/pkg/providers/mock"
	"github.com/mkhalish/parley/pkg/providers/openai"
)

type STTFactory func(cfg Config) (stt.Recognizer, error)
type TTSFactory func(cfg Config) (tts.Synthesizer, error)
type LLMFactory func(cfg Config) (llm.Adapter, error)

// ProviderRegistry maps vendor names from config onto capability
// constructors. Builders run once at engine startup so misconfiguration
// fails eagerly, before any call is accepted.
type ProviderRegistry struct {
	stt map[string]STTFactory
	tts map[string]TTSFactory
	llm map[string]LLMFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		stt: make(map[string]STTFactory),
		tts: make(map[string]TTSFactory),
		llm: make(map[string]LLMFactory),
	}
}

// DefaultProviderRegistry returns a registry with the built-in vendors.
func DefaultProviderRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	r.RegisterSTT("deepgram", buildDeepgramSTT)
	r.RegisterTTS("elevenlabs", buildElevenLabsTTS)
	r.RegisterLLM("openai", buildOpenAILLM)
	r.RegisterSTT("mock", buildMockSTT)
	r.RegisterTTS("mock", buildMockTTS)
	r.RegisterLLM("mock", buildMockLLM)
	return r
}

func (r *ProviderRegistry) RegisterSTT(name string, factory STTFactory) {
	r.stt[strings.ToLower(strings.TrimSpace(name))] = factory
}

func (r *ProviderRegistry) RegisterTTS(name string, factory TTSFactory) {
	r.tts[strings.ToLower(strings.TrimSpace(name))] = factory
}

func (r *ProviderRegistry) RegisterLLM(name string, factory LLMFactory) {
	r.llm[strings.ToLower(strings.TrimSpace(name))] = factory
}

func (r *ProviderRegistry) BuildSTT(provider string, cfg Config) (stt.Recognizer, error) {
	fn := r.stt[strings.ToLower(strings.TrimSpace(provider))]
	if fn == nil {
		return nil, fmt.Errorf("stt provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildTTS(provider string, cfg Config) (tts.Synthesizer, error) {
	fn := r.tts[strings.ToLower(strings.TrimSpace(provider))]
	if fn == nil {
		return nil, fmt.Errorf("tts provider not registered: %s", provider)
	}
	return fn(cfg)
}

func (r *ProviderRegistry) BuildLLM(provider string, cfg Config) (llm.Adapter, error) {
	fn := r.llm[strings.ToLower(strings.TrimSpace(provider))]
	if fn == nil {
		return nil, fmt.Errorf("llm provider not registered: %s", provider)
	}
	return fn(cfg)
}

func validateSettings(path string, input map[string]any, schema configutil.Schema) error {
	if err := configutil.ValidateSettings(input, schema); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

type deepgramSettings struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Language   string `mapstructure:"language"`
	SampleRate int    `mapstructure:"sample_rate"`
}

func buildDeepgramSTT(cfg Config) (stt.Recognizer, error) {
	if err := validateSettings("vendors.stt.settings", cfg.Vendors.STT.Settings, configutil.Schema{
		Required: []string{"api_key"},
		Optional: []string{"model", "language", "sample_rate"},
	}); err != nil {
		return nil, err
	}
	var s deepgramSettings
	if err := configutil.DecodeSettings(cfg.Vendors.STT.Settings, &s); err != nil {
		return nil, fmt.Errorf("deepgram settings: %w", err)
	}
	return deepgram.New(deepgram.Config{
		APIKey:     s.APIKey,
		Model:      s.Model,
		Language:   s.Language,
		SampleRate: s.SampleRate,
	})
}

type elevenLabsSettings struct {
	APIKey       string `mapstructure:"api_key"`
	VoiceID      string `mapstructure:"voice_id"`
	ModelID      string `mapstructure:"model_id"`
	OutputFormat string `mapstructure:"output_format"`
	BaseURL      string `mapstructure:"base_url"`
}

func buildElevenLabsTTS(cfg Config) (tts.Synthesizer, error) {
	if err := validateSettings("vendors.tts.settings", cfg.Vendors.TTS.Settings, configutil.Schema{
		Required: []string{"api_key", "voice_id"},
		Optional: []string{"model_id", "output_format", "base_url"},
	}); err != nil {
		return nil, err
	}
	var s elevenLabsSettings
	if err := configutil.DecodeSettings(cfg.Vendors.TTS.Settings, &s); err != nil {
		return nil, fmt.Errorf("elevenlabs settings: %w", err)
	}
	return elevenlabs.New(elevenlabs.Config{
		APIKey:       s.APIKey,
		VoiceID:      s.VoiceID,
		ModelID:      s.ModelID,
		OutputFormat: s.OutputFormat,
		BaseURL:      s.BaseURL,
	})
}

type openAISettings struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

func buildOpenAILLM(cfg Config) (llm.Adapter, error) {
	if err := validateSettings("vendors.llm.settings", cfg.Vendors.LLM.Settings, configutil.Schema{
		Required: []string{"api_key"},
		Optional: []string{"model", "base_url"},
	}); err != nil {
		return nil, err
	}
	var s openAISettings
	if err := configutil.DecodeSettings(cfg.Vendors.LLM.Settings, &s); err != nil {
		return nil, fmt.Errorf("openai settings: %w", err)
	}
	if err := configutil.RequireString(s.APIKey, "vendors.llm.settings.api_key"); err != nil {
		return nil, err
	}
	if s.Model == "" {
		s.Model = "gpt-4o-mini"
	}
	adapter := openai.NewAdapter(s.APIKey, s.Model)
	if s.BaseURL != "" {
		adapter.BaseURL = s.BaseURL
	}
	return adapter, nil
}

type mockSTTSettings struct {
	Transcript string `mapstructure:"transcript"`
}

func buildMockSTT(cfg Config) (stt.Recognizer, error) {
	if err := validateSettings("vendors.stt.settings", cfg.Vendors.STT.Settings, configutil.Schema{
		Optional: []string{"transcript"},
	}); err != nil {
		return nil, err
	}
	var s mockSTTSettings
	if err := configutil.DecodeSettings(cfg.Vendors.STT.Settings, &s); err != nil {
		return nil, err
	}
	return mock.NewRecognizer(mock.STTConfig{Transcript: s.Transcript}), nil
}

func buildMockTTS(cfg Config) (tts.Synthesizer, error) {
	return mock.NewSynthesizer(mock.TTSConfig{Audio: make([]byte, 640)}), nil
}

type mockLLMSettings struct {
	ResponseText string `mapstructure:"response_text"`
}

func buildMockLLM(cfg Config) (llm.Adapter, error) {
	if err := validateSettings("vendors.llm.settings", cfg.Vendors.LLM.Settings, configutil.Schema{
		Optional: []string{"response_text"},
	}); err != nil {
		return nil, err
	}
	var s mockLLMSettings
	if err := configutil.DecodeSettings(cfg.Vendors.LLM.Settings, &s); err != nil {
		return nil, err
	}
	return mock.NewLLMAdapter(mock.LLMConfig{ResponseText: s.ResponseText}), nil
}
