package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationGuard(t *testing.T) {
	t.Run("second caller loses until End", func(t *testing.T) {
		g := NewGenerationGuard()
		require.True(t, g.Begin("forecast:u1"))
		assert.False(t, g.Begin("forecast:u1"))
		g.End("forecast:u1")
		assert.True(t, g.Begin("forecast:u1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		g := NewGenerationGuard()
		require.True(t, g.Begin("forecast:u1"))
		assert.True(t, g.Begin("nudge:u1"))
		assert.True(t, g.Begin("forecast:u2"))
	})

	t.Run("instances are isolated", func(t *testing.T) {
		a := NewGenerationGuard()
		b := NewGenerationGuard()
		require.True(t, a.Begin("forecast:u1"))
		assert.True(t, b.Begin("forecast:u1"))
	})

	t.Run("End without Begin is harmless", func(t *testing.T) {
		g := NewGenerationGuard()
		g.End("forecast:u1")
		assert.True(t, g.Begin("forecast:u1"))
	})
}
