// Package persist serializes the catalog to and from a key-value store.
// Books and authors live under two fixed keys, each holding a JSON array.
package persist

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mesh-intelligence/bibliotheca/internal/kv"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// Keys under which the catalog collections are stored.
const (
	BooksKey   = "biblioteca_books"
	AuthorsKey = "biblioteca_authors"
)

// Gateway writes the full catalog through to a kv.Store and reads it back.
type Gateway struct {
	store  kv.Store
	logger *slog.Logger
}

// New returns a Gateway over store. A nil logger discards output.
func New(store kv.Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gateway{store: store, logger: logger}
}

// Save overwrites both keys with the catalog's collections. A failure is
// returned as *types.PersistError naming the key that could not be written.
//
// Stores that implement kv.Batcher write both keys in one transaction, so
// a failure leaves the previous books and authors in place. Other stores
// (the file backend) write books first, then authors; a failed authors
// write leaves the new books next to the old authors.
func (g *Gateway) Save(c types.Catalog) error {
	entries := make([]kv.Entry, 0, 2)
	for _, col := range []struct {
		key string
		v   any
	}{
		{BooksKey, nonNil(c.Books)},
		{AuthorsKey, nonNil(c.Authors)},
	} {
		data, err := json.Marshal(col.v)
		if err != nil {
			return &types.PersistError{Key: col.key, Err: err}
		}
		entries = append(entries, kv.Entry{Key: col.key, Value: data})
	}

	if b, ok := g.store.(kv.Batcher); ok {
		if err := b.PutMany(entries); err != nil {
			return &types.PersistError{Key: BooksKey + "," + AuthorsKey, Err: err}
		}
		return nil
	}
	for _, e := range entries {
		if err := g.store.Put(e.Key, e.Value); err != nil {
			return &types.PersistError{Key: e.Key, Err: err}
		}
	}
	return nil
}

// Load reads both keys. A key that is absent, unreadable, or holds invalid
// data yields an empty collection; Load itself never fails.
func (g *Gateway) Load() types.Catalog {
	var c types.Catalog
	c.Books = loadKey[types.Book](g, BooksKey)
	c.Authors = loadKey[types.Author](g, AuthorsKey)
	g.logger.Debug("catalog loaded",
		slog.Int("books", len(c.Books)),
		slog.Int("authors", len(c.Authors)))
	return c
}

func loadKey[T any](g *Gateway, key string) []T {
	data, err := g.store.Get(key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []T{}
	}
	if err != nil {
		g.logger.Warn("reading stored collection failed, starting empty",
			slog.String("key", key), slog.String("error", err.Error()))
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		g.logger.Warn("stored collection is not valid, starting empty",
			slog.String("key", key), slog.String("error", err.Error()))
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

// nonNil makes an empty collection serialize as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
