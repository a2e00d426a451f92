package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayOf(t *testing.T) {
	t.Run("same UTC day collapses", func(t *testing.T) {
		morning := time.Date(2026, 3, 14, 6, 15, 0, 0, time.UTC)
		night := time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)
		assert.Equal(t, dayOf(morning), dayOf(night))
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), dayOf(morning))
	})

	t.Run("midnight boundary splits", func(t *testing.T) {
		before := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
		after := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)
		assert.NotEqual(t, dayOf(before), dayOf(after))
	})

	t.Run("non-UTC input normalizes to the UTC day", func(t *testing.T) {
		est := time.FixedZone("EST", -5*3600)
		// 22:00 EST on the 14th is 03:00 UTC on the 15th.
		local := time.Date(2026, 3, 14, 22, 0, 0, 0, est)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), dayOf(local))
		assert.Equal(t, time.UTC, dayOf(local).Location())
	})
}

func TestSampleKey(t *testing.T) {
	t.Run("same-day samples share an upsert identity", func(t *testing.T) {
		first := sample("hrv", 58, time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC))
		second := sample("hrv", 61, time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC))
		assert.Equal(t, sampleKey("u1", first), sampleKey("u1", second))
	})

	t.Run("metric type splits the key", func(t *testing.T) {
		at := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)
		assert.NotEqual(t,
			sampleKey("u1", sample("hrv", 58, at)),
			sampleKey("u1", sample("recovery", 58, at)),
		)
	})

	t.Run("user splits the key", func(t *testing.T) {
		s := sample("hrv", 58, time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC))
		assert.NotEqual(t, sampleKey("u1", s), sampleKey("u2", s))
	})

	t.Run("different days split the key", func(t *testing.T) {
		first := sample("hrv", 58, time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC))
		second := sample("hrv", 58, time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC))
		assert.NotEqual(t, sampleKey("u1", first), sampleKey("u1", second))
	})
}
