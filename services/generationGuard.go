package services

import (
	"errors"
	"sync"
)

var ErrGenerationInFlight = errors.New("a generation request is already running")

// GenerationGuard allows one in-flight generation per key. Construct one per
// server and inject it; package-level state leaks across tests.
type GenerationGuard struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewGenerationGuard() *GenerationGuard {
	return &GenerationGuard{inFlight: make(map[string]bool)}
}

// Begin marks a key's generation as running. Second caller loses.
func (g *GenerationGuard) Begin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[key] {
		return false
	}
	g.inFlight[key] = true
	return true
}

func (g *GenerationGuard) End(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}
