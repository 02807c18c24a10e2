package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSegmenterFiresAfterQuietPeriod(t *testing.T) {
	var fired atomic.Int32
	seg := NewSilenceSegmenter(30*time.Millisecond, func() { fired.Add(1) })
	defer seg.Stop()

	seg.Touch()
	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired %d times, want 1", got)
	}
}

func TestSegmenterTouchResetsDeadline(t *testing.T) {
	var fired atomic.Int32
	seg := NewSilenceSegmenter(60*time.Millisecond, func() { fired.Add(1) })
	defer seg.Stop()

	// Keep touching faster than the threshold; the deadline never elapses.
	for i := 0; i < 5; i++ {
		seg.Touch()
		time.Sleep(20 * time.Millisecond)
	}
	if got := fired.Load(); got != 0 {
		t.Fatalf("fired %d times during activity, want 0", got)
	}
	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired %d times after quiet, want 1", got)
	}
}

func TestSegmenterDoesNotRefireWithoutTouch(t *testing.T) {
	var fired atomic.Int32
	seg := NewSilenceSegmenter(20*time.Millisecond, func() { fired.Add(1) })
	defer seg.Stop()

	seg.Touch()
	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired %d times with a single touch, want 1", got)
	}
	seg.Touch()
	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 2 {
		t.Fatalf("fired %d times after second touch, want 2", got)
	}
}

func TestSegmenterStopCancelsPendingFire(t *testing.T) {
	var fired atomic.Int32
	seg := NewSilenceSegmenter(30*time.Millisecond, func() { fired.Add(1) })

	seg.Touch()
	seg.Stop()
	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("fired %d times after Stop, want 0", got)
	}

	// Touch after Stop is a no-op.
	seg.Touch()
	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("fired %d times after Stop+Touch, want 0", got)
	}
}
