package catalog

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// The edit session models a single form that both creates and updates
// books: while a book is marked, a submission replaces that book. At most
// one book is marked at a time, and the marked book is always present.

// BeginEdit marks the book with the given identifier as under edit,
// replacing any previous mark. Returns types.ErrNotFound if it does not
// exist; the previous mark is kept in that case.
func (s *Store) BeginEdit(id string) (types.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.bookIndexLocked(id)
	if i < 0 {
		return types.Book{}, fmt.Errorf("book %s: %w", id, types.ErrNotFound)
	}
	s.editing = id
	s.logger.Debug("edit session started", slog.String("id", id))
	return s.books[i], nil
}

// CommitEdit replaces the marked book's fields, clears the mark, and
// persists. Returns types.ErrNoActiveEdit if no book is marked.
func (s *Store) CommitEdit(fields types.BookFields) (types.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == "" {
		return types.Book{}, types.ErrNoActiveEdit
	}
	return s.updateLocked(s.editing, fields)
}

// CancelEdit clears the mark. No-op when nothing is marked.
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing != "" {
		s.logger.Debug("edit session cancelled", slog.String("id", s.editing))
	}
	s.editing = ""
}

// Editing returns the marked book and true, or false when nothing is
// marked.
func (s *Store) Editing() (types.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == "" {
		return types.Book{}, false
	}
	i := s.bookIndexLocked(s.editing)
	if i < 0 {
		// Unreachable while every removal path clears the mark.
		s.editing = ""
		return types.Book{}, false
	}
	return s.books[i], true
}

// Submit applies a form submission: it updates the marked book when an edit
// session is open and adds a new book otherwise. The boolean reports
// whether an existing book was updated.
func (s *Store) Submit(fields types.BookFields) (types.Book, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing != "" {
		b, err := s.updateLocked(s.editing, fields)
		return b, true, err
	}
	b, err := s.addLocked(fields)
	return b, false, err
}
