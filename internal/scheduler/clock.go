package scheduler

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts wall time so tests can run the throttle without
// sleeping.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MaxErrorCount caps the shared error counter, and with it the delay
// multiplier.
const MaxErrorCount = 100

// throttle is the spacing state shared by all workers: a delay that widens
// with the error counter and a watermark of the latest outbound call.
//
// Thread-safety: all methods are safe for concurrent use.
type throttle struct {
	mu     sync.Mutex
	base   time.Duration
	errors int
	last   time.Time
}

// delay returns how long a worker must wait at now before its next call.
func (t *throttle) delay(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.IsZero() {
		return 0
	}
	d := t.base * time.Duration(t.errors+1)
	return t.last.Add(d).Sub(now)
}

// mark moves the watermark forward to at. It never moves backward.
func (t *throttle) mark(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if at.After(t.last) {
		t.last = at
	}
}

func (t *throttle) failure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.errors < MaxErrorCount {
		t.errors++
	}
}

func (t *throttle) success() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.errors > 0 {
		t.errors--
	}
}

// Errors returns the current error counter.
func (t *throttle) Errors() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errors
}
