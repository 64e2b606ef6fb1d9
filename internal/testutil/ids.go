// Package testutil holds deterministic helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator hands out UUID-shaped IDs in a fixed sequence:
//
//	00000000-0000-7000-8000-000000000001
//	00000000-0000-7000-8000-000000000002
//	...
//
// Two stores fed the same inputs with fresh generators end up with identical
// run IDs, which keeps JSON output and golden files stable.
//
// Thread-safety: SequentialIDGenerator is safe for concurrent use.
type SequentialIDGenerator struct {
	mu sync.Mutex
	n  uint64
}

// NewSequentialIDGenerator creates a generator whose first ID ends in 1.
func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

// Generate returns the next ID.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012x", g.n)
}

// Reset restarts the sequence.
func (g *SequentialIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
