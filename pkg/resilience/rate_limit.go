package resilience

import "fmt"

// RateLimitError marks a provider 429 so callers can distinguish quota
// exhaustion from hard failures in logs.
type RateLimitError struct {
	Provider string
	Message  string
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit: %s", e.Provider, e.Message)
}
