package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/bibliotheca/internal/catalog"
	"github.com/mesh-intelligence/bibliotheca/internal/kv"
	"github.com/mesh-intelligence/bibliotheca/internal/openlibrary"
	"github.com/mesh-intelligence/bibliotheca/internal/paths"
	"github.com/mesh-intelligence/bibliotheca/internal/persist"
	"github.com/mesh-intelligence/bibliotheca/internal/query"
	"github.com/mesh-intelligence/bibliotheca/internal/reconcile"
	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// storeConfig resolves the data directory and returns the storage config.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.settings.DataDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{Backend: a.settings.Backend, DataDir: dataDir}, nil
}

// openCatalog opens the configured store and loads the catalog. The caller
// must call the returned close function.
func (a *app) openCatalog() (*catalog.Store, func(), error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, nil, sysError(err)
	}
	store, err := kv.Open(cfg, a.logger)
	if err != nil {
		if errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrBackendEmpty) {
			return nil, nil, userError(fmt.Errorf("backend %q: %w", cfg.Backend, err))
		}
		return nil, nil, sysError(fmt.Errorf("open store: %w", err))
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			a.logger.Error("close store", slog.String("error", err.Error()))
		}
	}

	cat, err := catalog.Open(persist.New(store, a.logger),
		catalog.WithSeed(a.settings.Seed),
		catalog.WithLocale(a.settings.Locale),
		catalog.WithLogger(a.logger))
	if err != nil {
		closeStore()
		return nil, nil, sysError(err)
	}
	return cat, closeStore, nil
}

// withCatalog opens the catalog, runs fn, and closes the store.
func (a *app) withCatalog(fn func(*catalog.Store) error) error {
	cat, closeStore, err := a.openCatalog()
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(cat)
}

func (a *app) sorter() *query.Sorter {
	return query.NewSorter(a.settings.Locale)
}

func (a *app) searchSession() *reconcile.Session {
	searcher := a.searcher
	if searcher == nil {
		opts := a.settings.OpenLibrary
		opts.Logger = a.logger
		searcher = openlibrary.NewClient(opts)
	}
	return reconcile.NewSession(searcher, a.settings.SearchLimit, a.logger)
}

// classify wraps err with the exit code its kind calls for.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidSortKey),
		errors.Is(err, types.ErrNoActiveEdit),
		errors.Is(err, reconcile.ErrEmptyQuery):
		return userError(wrapped)
	default:
		return sysError(wrapped)
	}
}
