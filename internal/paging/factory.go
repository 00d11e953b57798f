package paging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/comixapp/comix-server/internal/domain"
)

// SourceFactory produces sources for the current query parameters.
//
// The factory tracks the most recently created source; changing the query
// invalidates it so the pager requests a fresh one, but only when the
// parameters actually differ.
type SourceFactory[T any] struct {
	provider Provider[T]
	logger   *slog.Logger

	mu      sync.Mutex
	query   domain.QueryParams
	current *Source[T]
}

// NewSourceFactory creates a factory serving the given initial query.
func NewSourceFactory[T any](provider Provider[T], query domain.QueryParams, logger *slog.Logger) *SourceFactory[T] {
	return &SourceFactory[T]{
		provider: provider,
		logger:   logger,
		query:    query,
	}
}

// Create always produces a new source for the current query and records
// it as current.
func (f *SourceFactory[T]) Create(ctx context.Context) *Source[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = NewSource(ctx, f.provider, f.query, f.logger)
	return f.current
}

// SetQueryParams replaces the factory's query. The current source is
// invalidated only when the new parameters are structurally different;
// setting an equal value is a no-op. Reports whether the query changed.
func (f *SourceFactory[T]) SetQueryParams(q domain.QueryParams) bool {
	f.mu.Lock()
	if f.query.Equal(q) {
		f.mu.Unlock()
		return false
	}
	f.query = q
	current := f.current
	f.mu.Unlock()

	if current != nil {
		current.Invalidate()
	}
	return true
}

// QueryParams returns the factory's current query.
func (f *SourceFactory[T]) QueryParams() domain.QueryParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// Current returns the most recently created source, or nil before the
// first Create.
func (f *SourceFactory[T]) Current() *Source[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}
