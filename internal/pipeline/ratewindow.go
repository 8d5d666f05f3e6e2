package pipeline

import (
	"sync"
	"time"
)

// RateWindow bounds how many webhook batches are accepted per fixed rolling
// window. Overflowed batches are dropped, never queued.
type RateWindow struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time
}

func NewRateWindow(limit int, window time.Duration) *RateWindow {
	return &RateWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether another batch fits in the current window and counts
// it if so. The window resets once its duration has elapsed.
func (w *RateWindow) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.windowStart) >= w.window {
		w.windowStart = now
		w.count = 0
	}

	if w.count >= w.limit {
		return false
	}
	w.count++
	return true
}

// Usage returns accepted batches in the current window and the cap.
func (w *RateWindow) Usage() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.now().Sub(w.windowStart) >= w.window {
		return 0, w.limit
	}
	return w.count, w.limit
}
