package session

import (
	"sync"
	"time"
)

// SilenceSegmenter raises an end-of-utterance signal after a quiet period.
// Every inbound frame resets the single outstanding deadline; the timer is
// not restarted after it fires, only the next frame restarts it.
type SilenceSegmenter struct {
	mu        sync.Mutex
	threshold time.Duration
	fire      func()
	timer     *time.Timer
	stopped   bool
}

func NewSilenceSegmenter(threshold time.Duration, fire func()) *SilenceSegmenter {
	if threshold <= 0 {
		threshold = 800 * time.Millisecond
	}
	return &SilenceSegmenter{threshold: threshold, fire: fire}
}

// Touch cancels and restarts the inactivity deadline.
func (s *SilenceSegmenter) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.threshold, s.fire)
}

// Stop cancels any pending deadline. The segmenter cannot be reused after.
func (s *SilenceSegmenter) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
