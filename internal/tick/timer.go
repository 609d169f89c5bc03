package tick

import (
	"context"
	"sync"
	"time"
)

// Timer periodically advances a Source, standing in for the compare-match
// interrupt of a hardware timer.
type Timer struct {
	src      *Source
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTimer creates a Timer that ticks src once every interval.
func NewTimer(src *Source, interval time.Duration) *Timer {
	return &Timer{src: src, interval: interval}
}

// Start begins ticking until ctx is cancelled or Stop is called.
// Calling Start on a running Timer is a no-op.
func (t *Timer) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.loop(ctx, t.done)
}

func (t *Timer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.src.Tick()
		}
	}
}

// Stop halts the timer and waits for its goroutine to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Interval returns the configured tick period.
func (t *Timer) Interval() time.Duration {
	return t.interval
}
