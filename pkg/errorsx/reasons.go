package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// Pipeline step failures, each scoped to one cycle.
	ReasonConversion  ReasonCode = "audio_conversion"
	ReasonRecognition ReasonCode = "speech_recognition"
	ReasonGeneration  ReasonCode = "reply_generation"
	ReasonSynthesis   ReasonCode = "speech_synthesis"

	// Raised eagerly at startup, before any call is attempted.
	ReasonConfiguration ReasonCode = "configuration"

	ReasonTransportInvalidSignature ReasonCode = "webhook_invalid_signature"
	ReasonTransportSend             ReasonCode = "transport_send"
)
