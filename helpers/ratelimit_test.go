package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestLimiter() (*RateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter()
	rl.now = func() time.Time { return clock.now }
	return rl, clock
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter()
	limit := Limit{MaxRequests: 3, Window: time.Second}

	assert.True(t, rl.Check("k", limit))
	assert.True(t, rl.Check("k", limit))
	assert.True(t, rl.Check("k", limit))
	assert.False(t, rl.Check("k", limit))

	clock.advance(1001 * time.Millisecond)
	assert.True(t, rl.Check("k", limit))
}

func TestRateLimiter_RejectionDoesNotRecord(t *testing.T) {
	rl, clock := newTestLimiter()
	limit := Limit{MaxRequests: 1, Window: time.Second}

	require.True(t, rl.Check("k", limit))
	// Hammering while blocked must not extend the block.
	for i := 0; i < 10; i++ {
		clock.advance(50 * time.Millisecond)
		assert.False(t, rl.Check("k", limit))
	}
	clock.advance(501 * time.Millisecond)
	assert.True(t, rl.Check("k", limit))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter()
	limit := Limit{MaxRequests: 1, Window: time.Minute}

	require.True(t, rl.Check("forecast:u1", limit))
	assert.False(t, rl.Check("forecast:u1", limit))
	assert.True(t, rl.Check("forecast:u2", limit))
	assert.True(t, rl.Check("sync:u1", limit))
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	rl, clock := newTestLimiter()
	limit := Limit{MaxRequests: 2, Window: 10 * time.Second}

	assert.Zero(t, rl.RetryAfter("k", limit))

	require.True(t, rl.Check("k", limit))
	clock.advance(2 * time.Second)
	require.True(t, rl.Check("k", limit))
	require.False(t, rl.Check("k", limit))

	// Oldest hit was 2s ago; it ages out of the 10s window in 8s.
	assert.Equal(t, 8*time.Second, rl.RetryAfter("k", limit))

	clock.advance(3 * time.Second)
	assert.Equal(t, 5*time.Second, rl.RetryAfter("k", limit))

	clock.advance(6 * time.Second)
	assert.Zero(t, rl.RetryAfter("k", limit))
	assert.True(t, rl.Check("k", limit))
}

func TestRateLimiter_IdleKeysAreDropped(t *testing.T) {
	rl, clock := newTestLimiter()
	limit := Limit{MaxRequests: 2, Window: time.Second}

	require.True(t, rl.Check("forecast:u1", limit))
	require.True(t, rl.Check("sync:u2", limit))
	assert.Len(t, rl.hits, 2)

	clock.advance(2 * time.Second)
	// Any touch after the window prunes the key outright instead of
	// leaving an empty slice behind for every user ever seen.
	assert.Zero(t, rl.RetryAfter("forecast:u1", limit))
	assert.Zero(t, rl.RetryAfter("sync:u2", limit))
	assert.Empty(t, rl.hits)

	assert.True(t, rl.Check("forecast:u1", limit))
	assert.Len(t, rl.hits, 1)
}

func TestRateLimiter_InstancesAreIsolated(t *testing.T) {
	a, _ := newTestLimiter()
	b, _ := newTestLimiter()
	limit := Limit{MaxRequests: 1, Window: time.Minute}

	require.True(t, a.Check("k", limit))
	require.False(t, a.Check("k", limit))
	assert.True(t, b.Check("k", limit))
}

func TestRateLimitPresets(t *testing.T) {
	for _, name := range []string{"chat", "insights", "protocol", "forecast", "sync"} {
		limit, ok := RateLimitPresets[name]
		require.True(t, ok, "missing preset %s", name)
		assert.Positive(t, limit.MaxRequests)
		assert.Positive(t, limit.Window)
	}
	assert.Equal(t, Limit{MaxRequests: 30, Window: 60 * time.Second}, RateLimitPresets["chat"])
	assert.Equal(t, Limit{MaxRequests: 10, Window: 600 * time.Second}, RateLimitPresets["forecast"])
}
