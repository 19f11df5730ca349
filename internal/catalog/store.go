// Package catalog owns the authoritative in-memory book and author
// collections. Every mutation is written through to the persistence gateway
// before the call returns.
package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mesh-intelligence/bibliotheca/internal/ids"
	"github.com/mesh-intelligence/bibliotheca/internal/query"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// Gateway persists and restores the full catalog.
type Gateway interface {
	Save(types.Catalog) error
	Load() types.Catalog
}

// Store is the catalog aggregate. It is safe for concurrent use; each
// operation runs its read-modify-persist sequence under one lock.
//
// When a write-through fails, the mutation is kept in memory and the
// operation returns its normal result together with a *types.PersistError.
type Store struct {
	mu      sync.Mutex
	books   []types.Book
	authors []types.Author
	editing string // ID of the book under edit, "" when none

	gateway Gateway
	ids     ids.Generator
	sorter  *query.Sorter
	logger  *slog.Logger
	seed    bool
}

// Option configures a Store.
type Option func(*Store)

// WithSeed controls whether an empty catalog is seeded with sample data on
// Open. Seeding is on by default.
func WithSeed(seed bool) Option {
	return func(s *Store) { s.seed = seed }
}

// WithIDs sets the identifier generator. Defaults to ids.UUIDGenerator.
func WithIDs(g ids.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithLocale sets the collation locale used by SortBooks.
func WithLocale(locale string) Option {
	return func(s *Store) { s.sorter = query.NewSorter(locale) }
}

// Open loads the catalog from gateway. If the loaded catalog is empty and
// seeding is enabled, the sample data is added and persisted at once.
// Records loaded with a duplicate identifier are given a fresh one.
//
// The returned error is non-nil only for a *types.PersistError from the
// initial write; the Store is usable either way.
func Open(gateway Gateway, opts ...Option) (*Store, error) {
	s := &Store{
		gateway: gateway,
		ids:     ids.UUIDGenerator{},
		sorter:  query.NewSorter(query.DefaultLocale),
		logger:  slog.New(slog.DiscardHandler),
		seed:    true,
	}
	for _, opt := range opts {
		opt(s)
	}

	c := gateway.Load()
	s.books = c.Books
	s.authors = c.Authors

	dirty := s.reassignDuplicates()
	if s.seed && len(s.books) == 0 && len(s.authors) == 0 {
		s.books, s.authors = sampleData(s.ids)
		s.logger.Info("seeded empty catalog with sample data",
			slog.Int("books", len(s.books)), slog.Int("authors", len(s.authors)))
		dirty = true
	}

	var err error
	if dirty {
		err = s.persistLocked("open")
	}
	s.logger.Debug("catalog opened",
		slog.Int("books", len(s.books)), slog.Int("authors", len(s.authors)))
	return s, err
}

// reassignDuplicates gives a fresh identifier to every record whose
// identifier is empty or was already seen. Replacements avoid every
// identifier present in either collection. Reports whether anything changed.
func (s *Store) reassignDuplicates() bool {
	taken := make(map[string]bool, len(s.books)+len(s.authors))
	for _, b := range s.books {
		taken[b.ID] = true
	}
	for _, a := range s.authors {
		taken[a.ID] = true
	}
	fresh := func() string {
		for {
			id := s.ids.NewID()
			if id != "" && !taken[id] {
				taken[id] = true
				return id
			}
		}
	}

	changed := false
	seen := make(map[string]bool, len(s.books))
	for i := range s.books {
		if s.books[i].ID == "" || seen[s.books[i].ID] {
			old := s.books[i].ID
			s.books[i].ID = fresh()
			s.logger.Warn("reassigned duplicate book id",
				slog.String("old", old), slog.String("new", s.books[i].ID))
			changed = true
		}
		seen[s.books[i].ID] = true
	}
	seen = make(map[string]bool, len(s.authors))
	for i := range s.authors {
		if s.authors[i].ID == "" || seen[s.authors[i].ID] {
			old := s.authors[i].ID
			s.authors[i].ID = fresh()
			s.logger.Warn("reassigned duplicate author id",
				slog.String("old", old), slog.String("new", s.authors[i].ID))
			changed = true
		}
		seen[s.authors[i].ID] = true
	}
	return changed
}

// persistLocked writes the full catalog through the gateway. The caller
// holds s.mu. A failure is logged and returned; memory is left as is.
func (s *Store) persistLocked(op string) error {
	err := s.gateway.Save(types.Catalog{Books: s.books, Authors: s.authors})
	if err != nil {
		s.logger.Error("catalog write-through failed",
			slog.String("op", op), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// newIDLocked returns an identifier not used by any current record.
func (s *Store) newIDLocked() string {
	for {
		id := s.ids.NewID()
		if s.bookIndexLocked(id) < 0 && s.authorIndexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) bookIndexLocked(id string) int {
	return slices.IndexFunc(s.books, func(b types.Book) bool { return b.ID == id })
}

func (s *Store) authorIndexLocked(id string) int {
	return slices.IndexFunc(s.authors, func(a types.Author) bool { return a.ID == id })
}

// AddBook appends a new book with a fresh identifier and persists.
func (s *Store) AddBook(fields types.BookFields) (types.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(fields)
}

func (s *Store) addLocked(fields types.BookFields) (types.Book, error) {
	b := types.Book{ID: s.newIDLocked(), BookFields: fields}
	s.books = append(s.books, b)
	s.logger.Info("book added", slog.String("id", b.ID), slog.String("title", b.Title))
	return b, s.persistLocked("add book")
}

// UpdateBook replaces the fields of the book with the given identifier,
// keeping its identifier and position, and persists. Returns
// types.ErrNotFound if no such book exists. Clears the edit-session marker
// if it referenced this book.
func (s *Store) UpdateBook(id string, fields types.BookFields) (types.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(id, fields)
}

func (s *Store) updateLocked(id string, fields types.BookFields) (types.Book, error) {
	i := s.bookIndexLocked(id)
	if i < 0 {
		return types.Book{}, fmt.Errorf("book %s: %w", id, types.ErrNotFound)
	}
	s.books[i].BookFields = fields
	if s.editing == id {
		s.editing = ""
	}
	s.logger.Info("book updated", slog.String("id", id), slog.String("title", fields.Title))
	return s.books[i], s.persistLocked("update book")
}

// DeleteBook removes the book with the given identifier. It reports whether
// a book was removed and persists only in that case. Deleting the book
// under edit ends the edit session.
func (s *Store) DeleteBook(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.bookIndexLocked(id)
	if i < 0 {
		return false, nil
	}
	s.books = slices.Delete(s.books, i, i+1)
	if s.editing == id {
		s.editing = ""
		s.logger.Info("edit session ended by delete", slog.String("id", id))
	}
	s.logger.Info("book deleted", slog.String("id", id))
	return true, s.persistLocked("delete book")
}

// SortBooks reorders the stored books by key and persists the new order.
func (s *Store) SortBooks(key query.SortKey) ([]types.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted, err := s.sorter.Sort(s.books, key)
	if err != nil {
		return nil, err
	}
	s.books = sorted
	return slices.Clone(s.books), s.persistLocked("sort books")
}

// AddAuthor appends a new author with a fresh identifier and persists.
func (s *Store) AddAuthor(fields types.AuthorFields) (types.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := types.Author{ID: s.newIDLocked(), AuthorFields: fields}
	s.authors = append(s.authors, a)
	s.logger.Info("author added", slog.String("id", a.ID), slog.String("name", a.Name))
	return a, s.persistLocked("add author")
}

// DeleteAuthor removes the author with the given identifier. It reports
// whether an author was removed and persists only in that case. Books that
// name the author are left alone.
func (s *Store) DeleteAuthor(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.authorIndexLocked(id)
	if i < 0 {
		return false, nil
	}
	s.authors = slices.Delete(s.authors, i, i+1)
	s.logger.Info("author deleted", slog.String("id", id))
	return true, s.persistLocked("delete author")
}

// Book returns the book with the given identifier, or types.ErrNotFound.
func (s *Store) Book(id string) (types.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.bookIndexLocked(id)
	if i < 0 {
		return types.Book{}, fmt.Errorf("book %s: %w", id, types.ErrNotFound)
	}
	return s.books[i], nil
}

// Books returns a copy of the books in stored order.
func (s *Store) Books() []types.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.books)
}

// Authors returns a copy of the authors in insertion order.
func (s *Store) Authors() []types.Author {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.authors)
}

// Catalog returns a snapshot of both collections.
func (s *Store) Catalog() types.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.Catalog{Books: s.books, Authors: s.authors}.Clone()
}

// AuthorNames returns the names of registered authors in insertion order,
// skipping duplicates. Used to suggest values for Book.Author.
func (s *Store) AuthorNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.authors))
	for _, a := range s.authors {
		if !slices.Contains(names, a.Name) {
			names = append(names, a.Name)
		}
	}
	return names
}

// HasAuthorNamed reports whether a registered author has exactly this name.
func (s *Store) HasAuthorNamed(name string) bool {
	return slices.Contains(s.AuthorNames(), name)
}
