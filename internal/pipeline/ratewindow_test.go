package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateWindow_CapWithinWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	w := NewRateWindow(5, time.Minute)
	w.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		assert.True(t, w.Allow(), "batch %d should fit", i+1)
	}
	// Sixth batch in the same window is dropped.
	assert.False(t, w.Allow())
	assert.False(t, w.Allow())

	used, limit := w.Usage()
	assert.Equal(t, 5, used)
	assert.Equal(t, 5, limit)
}

func TestRateWindow_ResetAfterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	w := NewRateWindow(2, time.Minute)
	w.now = func() time.Time { return now }

	assert.True(t, w.Allow())
	assert.True(t, w.Allow())
	assert.False(t, w.Allow())

	// Still inside the window 59s later.
	now = now.Add(59 * time.Second)
	assert.False(t, w.Allow())

	// A full window elapsed: counter resets.
	now = now.Add(time.Second)
	assert.True(t, w.Allow())

	used, _ := w.Usage()
	assert.Equal(t, 1, used)
}

func TestRateWindow_UsageReportsZeroAfterExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	w := NewRateWindow(3, time.Minute)
	w.now = func() time.Time { return now }

	w.Allow()
	w.Allow()

	now = now.Add(2 * time.Minute)
	used, limit := w.Usage()
	assert.Equal(t, 0, used)
	assert.Equal(t, 3, limit)
}
