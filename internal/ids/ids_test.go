package ids

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGeneratorUnique(t *testing.T) {
	var g UUIDGenerator
	seen := make(map[string]bool)
	for range 1000 {
		id := g.NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true

		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	}
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequence("book-")
	assert.Equal(t, "book-1", g.NewID())
	assert.Equal(t, "book-2", g.NewID())
}

func TestSequenceGeneratorConcurrent(t *testing.T) {
	g := NewSequence("x")
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[string]bool)
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := g.NewID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}
