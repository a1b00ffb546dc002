package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_Sequence(t *testing.T) {
	gen := NewFixedIDGenerator("test")

	assert.Equal(t, "test-0001", gen.NewID())
	assert.Equal(t, "test-0002", gen.NewID())
	assert.Equal(t, "test-0003", gen.NewID())
}

func TestFixedIDGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "run-0001", NewFixedIDGenerator("").NewID())
}

func TestFixedIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedIDGenerator("")
	const n = 100

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			id := gen.NewID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "ids are unique")
}
