package types

import (
	"errors"
	"fmt"
)

// Catalog operation errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrNoActiveEdit   = errors.New("no active edit session")
	ErrInvalidSortKey = errors.New("invalid sort key")
)

// PersistError reports that writing a key to the local store failed. The
// in-memory mutation that triggered the write is not rolled back.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ReconciliationError reports that an external search failed, timed out, or
// returned data that could not be parsed. It never affects the catalog.
type ReconciliationError struct {
	Query string
	Err   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("external search %q: %v", e.Query, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// IsPersistError reports whether err is or wraps a *PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}
