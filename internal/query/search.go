// Package query filters and orders snapshots of the book collection. It
// never mutates its input.
package query

import (
	"strings"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// Search returns the books whose title or author contains term, ignoring
// case, in their original order. A blank term returns every book.
func Search(books []types.Book, term string) []types.Book {
	out := make([]types.Book, 0, len(books))
	if strings.TrimSpace(term) == "" {
		return append(out, books...)
	}
	needle := strings.ToLower(term)
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) {
			out = append(out, b)
		}
	}
	return out
}
