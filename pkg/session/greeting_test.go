package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGreetingCacheLookupColdAndWarm(t *testing.T) {
	audio := []byte{1, 2, 3}
	c := NewGreetingCache(func(context.Context) ([]byte, error) { return audio, nil })

	if _, ok := c.Lookup(); ok {
		t.Fatal("Lookup on cold cache reported ready")
	}
	got, err := c.EnsureReady(context.Background())
	if err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if !bytes.Equal(got, audio) {
		t.Fatalf("EnsureReady audio = %v, want %v", got, audio)
	}
	got, ok := c.Lookup()
	if !ok || !bytes.Equal(got, audio) {
		t.Fatalf("Lookup after warm = (%v, %v)", got, ok)
	}
}

func TestGreetingCacheWarmsOnce(t *testing.T) {
	var warms atomic.Int32
	c := NewGreetingCache(func(context.Context) ([]byte, error) {
		warms.Add(1)
		return []byte{9}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.EnsureReady(context.Background()); err != nil {
				t.Errorf("EnsureReady: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := warms.Load(); got != 1 {
		t.Fatalf("warm ran %d times, want 1", got)
	}
}

func TestGreetingCacheFailedWarmStaysCold(t *testing.T) {
	warmErr := errors.New("synthesis unavailable")
	fail := true
	c := NewGreetingCache(func(context.Context) ([]byte, error) {
		if fail {
			return nil, warmErr
		}
		return []byte{7}, nil
	})

	if _, err := c.EnsureReady(context.Background()); !errors.Is(err, warmErr) {
		t.Fatalf("EnsureReady error = %v, want %v", err, warmErr)
	}
	if _, ok := c.Lookup(); ok {
		t.Fatal("cache reported ready after failed warm")
	}

	// A later attempt can still succeed.
	fail = false
	if _, err := c.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady retry: %v", err)
	}
	if _, ok := c.Lookup(); !ok {
		t.Fatal("cache not ready after successful retry")
	}
}

func TestGreetingCacheWaiterSeesSharedFailure(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewGreetingCache(func(context.Context) ([]byte, error) {
		close(started)
		<-release
		return nil, errors.New("boom")
	})

	go func() { _, _ = c.EnsureReady(context.Background()) }()
	<-started

	errc := make(chan error, 1)
	go func() {
		_, err := c.EnsureReady(context.Background())
		errc <- err
	}()
	close(release)

	if err := <-errc; !errors.Is(err, ErrGreetingUnavailable) {
		t.Fatalf("waiter error = %v, want ErrGreetingUnavailable", err)
	}
}
