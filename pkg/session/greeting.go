package session

import (
	"context"
	"errors"
	"sync"
)

// ErrGreetingUnavailable is returned to waiters when the warm attempt they
// were waiting on failed. Callers fall back to synthesizing directly.
var ErrGreetingUnavailable = errors.New("greeting cache warm failed")

// GreetingCache holds the pre-synthesized opening line, shared read-only
// across sessions. Warming is coalesced: concurrent first use results in a
// single synthesis attempt, with late callers waiting on its outcome. A
// failed warm is non-fatal; sessions that find the cache cold synthesize
// the greeting themselves.
type GreetingCache struct {
	warm func(ctx context.Context) ([]byte, error)

	mu       sync.Mutex
	ready    bool
	audio    []byte
	inflight chan struct{}
}

func NewGreetingCache(warm func(ctx context.Context) ([]byte, error)) *GreetingCache {
	return &GreetingCache{warm: warm}
}

// Lookup returns the cached greeting audio without blocking.
func (c *GreetingCache) Lookup() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return nil, false
	}
	return c.audio, true
}

// EnsureReady warms the cache if needed and returns the greeting audio.
// It is idempotent; concurrent callers share one warm attempt.
func (c *GreetingCache) EnsureReady(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	if c.ready {
		audio := c.audio
		c.mu.Unlock()
		return audio, nil
	}
	if c.inflight != nil {
		wait := c.inflight
		c.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.ready {
			return c.audio, nil
		}
		return nil, ErrGreetingUnavailable
	}
	done := make(chan struct{})
	c.inflight = done
	c.mu.Unlock()

	audio, err := c.warm(ctx)

	c.mu.Lock()
	c.inflight = nil
	if err == nil {
		c.ready = true
		c.audio = audio
	}
	c.mu.Unlock()
	close(done)
	return audio, err
}
