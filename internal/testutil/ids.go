package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator generates predictable run ids: the prefix followed by a
// zero-padded sequence number starting at 1.
//
// This keeps store rows deterministic so tests can assert exact ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewFixedIDGenerator creates a generator. If prefix is empty, "run" is
// used.
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "run"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// NewID returns the next id, e.g. run-0001.
func (g *FixedIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}
