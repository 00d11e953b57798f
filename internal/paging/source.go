// Package paging loads windowed slices of a filtered, ordered collection
// and keeps them fresh: a Source serves one immutable generation of the
// data, invalidates itself when the underlying data changes, and a Pager
// replaces invalidated sources with new ones.
package paging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/comixapp/comix-server/internal/domain"
)

// ErrInvalidated is returned by loads on a source that has been invalidated.
// Callers create a fresh source and retry.
var ErrInvalidated = errors.New("paging: source invalidated")

// Provider supplies pages of items for a query and signals when results
// for that query may have changed.
type Provider[T any] interface {
	// Total returns the number of items matching the query.
	Total(ctx context.Context, q domain.QueryParams) (int64, error)
	// Window returns up to size items starting at offset.
	Window(ctx context.Context, offset, size int, q domain.QueryParams) ([]T, error)
	// SubscribeInvalidation returns a channel that receives a signal when
	// results for the query may have changed, and a cancel function that
	// releases the subscription. The channel is closed on cancel.
	SubscribeInvalidation(q domain.QueryParams) (<-chan struct{}, func())
}

// State is the lifecycle phase of a Source.
type State int

const (
	// StateCreated is the phase before the first load.
	StateCreated State = iota
	// StateInitialLoad is the phase during the first window fetch.
	StateInitialLoad
	// StateStable is the phase between successful loads.
	StateStable
	// StateRangeLoad is the phase during a subsequent window fetch.
	StateRangeLoad
	// StateInvalidated is terminal. The source serves no more loads.
	StateInvalidated
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialLoad:
		return "initial_load"
	case StateStable:
		return "stable"
	case StateRangeLoad:
		return "range_load"
	case StateInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Window is one loaded slice of the list.
type Window[T any] struct {
	Items    []T
	Position int
	Total    int64
}

// LastKey returns the index of the final item in the window, or -1 for an
// empty window. Clients persist it to restore scroll position.
func (w Window[T]) LastKey() int {
	if len(w.Items) == 0 {
		return -1
	}
	return w.Position + len(w.Items) - 1
}

// Source serves windows for one generation of a query's results.
//
// A source is single-use: once the underlying data changes (or its parent
// context is cancelled) it flips to StateInvalidated and every further
// load fails with ErrInvalidated.
type Source[T any] struct {
	provider Provider[T]
	query    domain.QueryParams
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	state        State
	onInvalidate []func()
}

// NewSource creates a source for the query, parented to ctx. Cancelling
// the parent invalidates the source so the two cannot diverge.
func NewSource[T any](ctx context.Context, provider Provider[T], q domain.QueryParams, logger *slog.Logger) *Source[T] {
	sctx, cancel := context.WithCancel(ctx)
	s := &Source[T]{
		provider: provider,
		query:    q,
		logger:   logger,
		ctx:      sctx,
		cancel:   cancel,
		state:    StateCreated,
	}

	go func() {
		<-sctx.Done()
		s.Invalidate()
	}()

	return s
}

// Query returns the query this source serves.
func (s *Source[T]) Query() domain.QueryParams {
	return s.query
}

// State returns the current lifecycle phase.
func (s *Source[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Invalid reports whether the source has been invalidated.
func (s *Source[T]) Invalid() bool {
	return s.State() == StateInvalidated
}

// OnInvalidate registers fn to run when the source is invalidated.
// Registering on an already invalid source runs fn immediately.
func (s *Source[T]) OnInvalidate(fn func()) {
	s.mu.Lock()
	if s.state == StateInvalidated {
		s.mu.Unlock()
		fn()
		return
	}
	s.onInvalidate = append(s.onInvalidate, fn)
	s.mu.Unlock()
}

// Invalidate marks the source invalid and cancels its owned work.
// Idempotent: late update notifications on an already invalid source are
// dropped without effect.
func (s *Source[T]) Invalidate() {
	s.mu.Lock()
	if s.state == StateInvalidated {
		s.mu.Unlock()
		return
	}
	s.state = StateInvalidated
	callbacks := s.onInvalidate
	s.onInvalidate = nil
	s.mu.Unlock()

	s.cancel()
	for _, fn := range callbacks {
		fn()
	}
}

// LoadInitial fetches the first window. The load blocks until the total
// count and the window are resolved.
//
// Semantics:
//   - total == 0 reports an empty window at position 0 and the source
//     stays stable WITHOUT subscribing to update notifications.
//   - A window shorter than requested (data shrank between count and
//     fetch) invalidates the source instead of reporting a partial
//     window; the caller retries with a fresh source.
//   - After a successful load the source listens for one update
//     notification for its query, invalidates itself on delivery, and
//     stops listening.
func (s *Source[T]) LoadInitial(ctx context.Context, requestedPosition, requestedSize int) (*Window[T], error) {
	if err := s.enter(StateCreated, StateInitialLoad); err != nil {
		return nil, err
	}

	total, err := s.provider.Total(ctx, s.query)
	if err != nil {
		s.Invalidate()
		return nil, err
	}

	if total == 0 {
		s.leave(StateStable)
		return &Window[T]{Items: []T{}, Position: 0, Total: 0}, nil
	}

	position, size := clampWindow(requestedPosition, requestedSize, total)

	items, err := s.provider.Window(ctx, position, size, s.query)
	if err != nil {
		s.Invalidate()
		return nil, err
	}

	// A short window means the data shrank underneath us. Restart from a
	// fresh source rather than reporting a window that disagrees with
	// the total.
	if len(items) < size {
		s.logger.Debug("short initial window, invalidating",
			"requested", size, "got", len(items))
		s.Invalidate()
		return nil, ErrInvalidated
	}

	s.subscribeUpdates()
	s.leave(StateStable)

	return &Window[T]{Items: items, Position: position, Total: total}, nil
}

// LoadRange fetches a subsequent window at the given position.
func (s *Source[T]) LoadRange(ctx context.Context, position, size int) ([]T, error) {
	if err := s.enter(StateStable, StateRangeLoad); err != nil {
		return nil, err
	}

	items, err := s.provider.Window(ctx, position, size, s.query)
	if err != nil {
		s.Invalidate()
		return nil, err
	}

	s.leave(StateStable)
	return items, nil
}

// subscribeUpdates invalidates the source on the first change
// notification for its query, then stops listening.
func (s *Source[T]) subscribeUpdates() {
	ch, cancelSub := s.provider.SubscribeInvalidation(s.query)

	go func() {
		defer cancelSub()

		select {
		case _, ok := <-ch:
			if ok {
				s.Invalidate()
			}
		case <-s.ctx.Done():
		}
	}()
}

// enter transitions from to next, failing if the source is invalid or in
// an unexpected phase.
func (s *Source[T]) enter(from, next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInvalidated {
		return ErrInvalidated
	}
	if s.state != from {
		return ErrInvalidated
	}
	s.state = next
	return nil
}

// leave returns to a resting state unless the source was invalidated
// mid-load.
func (s *Source[T]) leave(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInvalidated {
		return
	}
	s.state = next
}

// clampWindow fits a requested window inside the list bounds.
func clampWindow(position, size int, total int64) (int, int) {
	if size <= 0 {
		size = 1
	}
	if position < 0 {
		position = 0
	}

	// Pull the window back so it ends inside the list when possible.
	if int64(position) >= total {
		position = int(max(0, total-int64(size)))
	}
	if int64(position+size) > total {
		size = int(total - int64(position))
	}
	return position, size
}
