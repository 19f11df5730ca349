// Package ids generates identifiers for new catalog records.
package ids

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces identifiers that are unique among all identifiers the
// same generator has returned.
type Generator interface {
	NewID() string
}

// UUIDGenerator returns UUID v7 strings.
type UUIDGenerator struct{}

// NewID generates a new UUID v7. Falls back to UUID v4 if v7 generation fails.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SequenceGenerator returns Prefix followed by an increasing counter. Safe
// for concurrent use.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequence returns a SequenceGenerator starting at 1.
func NewSequence(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s%d", g.Prefix, g.n.Add(1))
}
