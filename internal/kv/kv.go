// Package kv provides the local key-value stores the catalog persists to.
// Every backend offers the same three operations: get a value, overwrite a
// value, close. Values are opaque bytes.
package kv

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// Store is a local key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Put overwrites the value stored under key.
	Put(key string, value []byte) error

	// Close releases backend resources. Idempotent.
	Close() error
}

// Entry is one key and value of a batched write.
type Entry struct {
	Key   string
	Value []byte
}

// Batcher is implemented by stores that can write several keys as one
// atomic unit: either every entry is stored or none is.
type Batcher interface {
	PutMany(entries []Entry) error
}

// checkEntries validates every key of a batch before anything is written.
func checkEntries(entries []Entry) error {
	for _, e := range entries {
		if err := checkKey(e.Key); err != nil {
			return err
		}
	}
	return nil
}

// Store errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrInvalidKey  = errors.New("invalid key")
	ErrClosed      = errors.New("store is closed")
)

// validKey restricts keys to names that are safe as file names.
var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open creates the store selected by cfg.Backend. Persistent backends create
// cfg.DataDir if it does not exist.
func Open(cfg types.Config, logger *slog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if cfg.Persistent() {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
		}
	}

	switch cfg.Backend {
	case types.BackendFile:
		return NewFileStore(dataDir), nil
	case types.BackendSQLite:
		return OpenSQLite(dataDir)
	case types.BackendBadger:
		cfgB := DefaultBadgerConfig()
		cfgB.Path = dataDir
		cfgB.Logger = logger
		return OpenBadger(cfgB)
	case types.BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, types.ErrBackendUnknown
}
