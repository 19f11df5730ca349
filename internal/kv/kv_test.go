package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)

	bcfg := DefaultBadgerConfig()
	bcfg.InMemory = true
	bcfg.SyncWrites = false
	bd, err := OpenBadger(bcfg)
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(t.TempDir()),
		"sqlite": sq,
		"badger": bd,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStore_GetMissingKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("biblioteca_books")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestStore_PutGetOverwrite(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("biblioteca_books", []byte(`[{"id":"1"}]`)))
			got, err := s.Get("biblioteca_books")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"1"}]`, string(got))

			require.NoError(t, s.Put("biblioteca_books", []byte(`[]`)))
			got, err = s.Get("biblioteca_books")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestStore_UnicodeValue(t *testing.T) {
	value := []byte(`[{"title":"Écrivain, poète — 東京"}]`)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("k", value))
			got, err := s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, value, got)
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Put("../escape", []byte("x"))
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestStore_CloseIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, s.Close())
			assert.NoError(t, s.Close())
		})
	}
}

func TestFileStore_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.Put("biblioteca_authors", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "biblioteca_authors.json", entries[0].Name())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", []byte("v")))
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(dir, SQLiteFileName))
	require.NoError(t, err)

	s2, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultBadgerConfig()
	cfg.Path = dir

	s, err := OpenBadger(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", []byte("v")))
	require.NoError(t, s.Close())

	s2, err := OpenBadger(cfg)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}

func TestOpen_SelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    any
	}{
		{types.BackendFile, &FileStore{}},
		{types.BackendSQLite, &SQLiteStore{}},
		{types.BackendBadger, &BadgerStore{}},
		{types.BackendMemory, &MemoryStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "data")
			s, err := Open(types.Config{Backend: tt.backend, DataDir: dir}, nil)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestOpen_RejectsUnknownBackend(t *testing.T) {
	_, err := Open(types.Config{Backend: "postgres"}, nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = Open(types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}

func TestBatcher_PutManyAllOrNothing(t *testing.T) {
	for name, s := range backends(t) {
		b, ok := s.(Batcher)
		if !ok {
			continue
		}
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.PutMany([]Entry{
				{Key: "biblioteca_books", Value: []byte(`[1]`)},
				{Key: "biblioteca_authors", Value: []byte(`[2]`)},
			}))
			got, err := s.Get("biblioteca_authors")
			require.NoError(t, err)
			assert.Equal(t, `[2]`, string(got))

			err = b.PutMany([]Entry{
				{Key: "biblioteca_books", Value: []byte(`[3]`)},
				{Key: "../escape", Value: []byte(`[4]`)},
			})
			assert.ErrorIs(t, err, ErrInvalidKey)
			got, err = s.Get("biblioteca_books")
			require.NoError(t, err)
			assert.Equal(t, `[1]`, string(got), "failed batch must not write any entry")
		})
	}
}

func TestBatcher_Implementations(t *testing.T) {
	stores := backends(t)
	for _, name := range []string{"memory", "sqlite", "badger"} {
		_, ok := stores[name].(Batcher)
		assert.True(t, ok, "%s should write batches atomically", name)
	}
	_, ok := stores["file"].(Batcher)
	assert.False(t, ok)
}
