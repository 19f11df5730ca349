package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/mesh-intelligence/bibliotheca/pkg/types"
)

// DefaultLimit is the page size requested from the external source.
const DefaultLimit = 10

var (
	ErrEmptyQuery = errors.New("empty search query")

	// ErrStaleResponse marks a response that completed after a newer
	// request had already been applied. Its results are discarded.
	ErrStaleResponse = errors.New("stale search response")
)

// Searcher fetches a raw search response. *openlibrary.Client satisfies it.
type Searcher interface {
	SearchRaw(ctx context.Context, query string, limit int) ([]byte, error)
}

// Session runs external searches and keeps the most recently issued one
// that has completed. Requests are numbered as they start; a response for
// an older request than the one already applied is dropped, so results
// never regress when calls overlap.
type Session struct {
	searcher Searcher
	limit    int
	logger   *slog.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
	latest  Results
}

// NewSession returns a Session over searcher. A non-positive limit selects
// DefaultLimit; a nil logger discards output.
func NewSession(searcher Searcher, limit int, logger *slog.Logger) *Session {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{searcher: searcher, limit: limit, logger: logger}
}

// Search queries the external source and parses the response. Any
// failure is returned as a *types.ReconciliationError together with the
// zero Results. A failed request that is still the newest also resets
// Latest to empty.
func (s *Session) Search(ctx context.Context, query string) (Results, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Results{}, &types.ReconciliationError{Query: query, Err: ErrEmptyQuery}
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	res, err := s.fetch(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		s.logger.Debug("discarding stale search response",
			slog.String("query", query), slog.Uint64("seq", seq), slog.Uint64("applied", s.applied))
		return Results{}, &types.ReconciliationError{Query: query, Err: ErrStaleResponse}
	}
	s.applied = seq
	if err != nil {
		s.latest = Results{}
		s.logger.Warn("external search failed", slog.String("query", query), slog.String("error", err.Error()))
		return Results{}, &types.ReconciliationError{Query: query, Err: err}
	}
	s.latest = res
	s.logger.Info("external search",
		slog.String("query", query),
		slog.Int("total", res.TotalFound),
		slog.Int("candidates", len(res.Candidates)),
		slog.Int("authors", len(res.UniqueAuthors)))
	return res, nil
}

func (s *Session) fetch(ctx context.Context, query string) (Results, error) {
	raw, err := s.searcher.SearchRaw(ctx, query, s.limit)
	if err != nil {
		return Results{}, err
	}
	return ParseSearchResults(raw)
}

// Latest returns the results of the last applied search.
func (s *Session) Latest() Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
