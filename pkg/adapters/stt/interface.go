package stt

import "context"

// Recognizer defines the contract for any speech-to-text vendor implementation.
// Input is one complete utterance as 16-bit little-endian linear PCM at the
// configured sample rate. An empty transcript is a valid "no speech" result.
type Recognizer interface {
	// Name returns adapter name for logging.
	Name() string
	// Recognize transcribes one utterance buffer.
	Recognize(ctx context.Context, pcm []byte) (string, error)
}

// Config contains vendor-agnostic recognizer configuration.
type Config struct {
	SampleRate int
	Language   string
}
