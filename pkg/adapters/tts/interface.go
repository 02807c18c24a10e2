package tts

import "context"

// Synthesizer defines the contract for any text-to-speech vendor
// implementation. Output is 16-bit little-endian linear PCM at the
// configured sample rate.
type Synthesizer interface {
	// Name returns adapter name for logging.
	Name() string
	// Synthesize renders text to audio.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config contains vendor-agnostic synthesizer configuration.
type Config struct {
	SampleRate int
	Voice      string
}
