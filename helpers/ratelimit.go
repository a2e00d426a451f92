package helpers

import (
	"sync"
	"time"
)

// Limit is a sliding-window budget: at most MaxRequests inside Window.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitPresets are the per-feature budgets. These are UX throttles
// against accidental request storms, not security quotas.
var RateLimitPresets = map[string]Limit{
	"chat":     {MaxRequests: 30, Window: 60 * time.Second},
	"insights": {MaxRequests: 5, Window: 300 * time.Second},
	"protocol": {MaxRequests: 3, Window: 300 * time.Second},
	"forecast": {MaxRequests: 10, Window: 600 * time.Second},
	"sync":     {MaxRequests: 10, Window: 60 * time.Second},
}

// RateLimiter keeps per-key request timestamps in memory. Construct one per
// server and inject it; package-level state leaks across tests.
type RateLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Check prunes timestamps older than the window, then either records the
// request and returns true, or returns false without recording when the key
// is at capacity.
func (rl *RateLimiter) Check(key string, l Limit) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	kept := rl.prune(key, now, l.Window)
	if len(kept) >= l.MaxRequests {
		return false
	}
	rl.hits[key] = append(kept, now)
	return true
}

// RetryAfter reports how long until the oldest in-window request ages out.
// Zero when the key has headroom.
func (rl *RateLimiter) RetryAfter(key string, l Limit) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	kept := rl.prune(key, now, l.Window)
	if len(kept) < l.MaxRequests {
		return 0
	}
	wait := kept[0].Add(l.Window).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait
}

// prune stores the surviving timestamps and drops the key entirely when none
// survive, so idle preset:user entries do not accumulate. Must be called
// with the lock held.
func (rl *RateLimiter) prune(key string, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	var kept []time.Time
	for _, t := range rl.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(rl.hits, key)
	} else {
		rl.hits[key] = kept
	}
	return kept
}
