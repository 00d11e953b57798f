package paging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/comixapp/comix-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider serves a mutable in-memory item list and hand-triggered
// update notifications.
type fakeProvider struct {
	mu    sync.Mutex
	items []string

	totalErr  error
	windowErr error

	totalCalls  int
	windowCalls int

	subs     []chan struct{}
	subCount int
}

func newFakeProvider(n int) *fakeProvider {
	p := &fakeProvider{}
	for i := 0; i < n; i++ {
		p.items = append(p.items, fmt.Sprintf("item-%02d", i))
	}
	return p
}

func (p *fakeProvider) Total(_ context.Context, _ domain.QueryParams) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalCalls++
	if p.totalErr != nil {
		return 0, p.totalErr
	}
	return int64(len(p.items)), nil
}

func (p *fakeProvider) Window(_ context.Context, offset, size int, _ domain.QueryParams) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.windowCalls++
	if p.windowErr != nil {
		return nil, p.windowErr
	}
	if offset >= len(p.items) {
		return []string{}, nil
	}
	end := min(offset+size, len(p.items))
	return append([]string(nil), p.items[offset:end]...), nil
}

func (p *fakeProvider) SubscribeInvalidation(_ domain.QueryParams) (<-chan struct{}, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan struct{}, 1)
	p.subs = append(p.subs, ch)
	p.subCount++
	return ch, func() {}
}

// notify signals every live subscription once.
func (p *fakeProvider) notify() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (p *fakeProvider) shrinkTo(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = p.items[:n]
}

func (p *fakeProvider) subscriptions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subCount
}

func waitInvalid[T any](t *testing.T, s *Source[T]) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Invalid() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("source never invalidated")
}

func TestSourceLoadInitial(t *testing.T) {
	provider := newFakeProvider(10)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	if s.State() != StateCreated {
		t.Fatalf("state = %s, want created", s.State())
	}

	w, err := s.LoadInitial(context.Background(), 0, 4)
	if err != nil {
		t.Fatalf("load initial: %v", err)
	}
	if w.Total != 10 || w.Position != 0 || len(w.Items) != 4 {
		t.Errorf("window = %+v", w)
	}
	if w.Items[0] != "item-00" || w.Items[3] != "item-03" {
		t.Errorf("items = %v", w.Items)
	}
	if w.LastKey() != 3 {
		t.Errorf("last key = %d, want 3", w.LastKey())
	}
	if s.State() != StateStable {
		t.Errorf("state = %s, want stable", s.State())
	}
}

func TestSourceLoadInitialClampsPosition(t *testing.T) {
	provider := newFakeProvider(10)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	// Saved key far past the end: window pulls back to cover the tail.
	w, err := s.LoadInitial(context.Background(), 50, 4)
	if err != nil {
		t.Fatalf("load initial: %v", err)
	}
	if w.Position != 6 || len(w.Items) != 4 {
		t.Errorf("window = position %d len %d, want 6/4", w.Position, len(w.Items))
	}
}

func TestSourceLoadInitialEmptyListDoesNotSubscribe(t *testing.T) {
	provider := newFakeProvider(0)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	w, err := s.LoadInitial(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("load initial: %v", err)
	}
	if len(w.Items) != 0 || w.Position != 0 || w.Total != 0 {
		t.Errorf("window = %+v", w)
	}
	if w.LastKey() != -1 {
		t.Errorf("last key = %d, want -1", w.LastKey())
	}
	if s.State() != StateStable {
		t.Errorf("state = %s, want stable", s.State())
	}
	if provider.subscriptions() != 0 {
		t.Errorf("empty list must not subscribe to updates, got %d subscriptions", provider.subscriptions())
	}
}

func TestSourceShortWindowInvalidates(t *testing.T) {
	// Total says 10, but the data shrinks before the window fetch. The
	// source must invalidate instead of delivering a partial window.
	provider := newFakeProvider(10)
	s := NewSource[string](context.Background(), &shrinkingProvider{inner: provider}, domain.DefaultQueryParams(), testLogger())

	_, err := s.LoadInitial(context.Background(), 0, 8)
	if !errors.Is(err, ErrInvalidated) {
		t.Fatalf("expected ErrInvalidated, got %v", err)
	}
	if !s.Invalid() {
		t.Error("source should be invalid after short window")
	}
}

// shrinkingProvider reports the full total but shrinks the data before
// the window fetch, mimicking deletion between the two calls.
type shrinkingProvider struct {
	inner *fakeProvider
	once  sync.Once
}

func (p *shrinkingProvider) Total(ctx context.Context, q domain.QueryParams) (int64, error) {
	total, err := p.inner.Total(ctx, q)
	p.once.Do(func() { p.inner.shrinkTo(3) })
	return total, err
}

func (p *shrinkingProvider) Window(ctx context.Context, offset, size int, q domain.QueryParams) ([]string, error) {
	return p.inner.Window(ctx, offset, size, q)
}

func (p *shrinkingProvider) SubscribeInvalidation(q domain.QueryParams) (<-chan struct{}, func()) {
	return p.inner.SubscribeInvalidation(q)
}

func TestSourceInvalidatesOnFirstNotification(t *testing.T) {
	provider := newFakeProvider(10)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	if _, err := s.LoadInitial(context.Background(), 0, 5); err != nil {
		t.Fatalf("load initial: %v", err)
	}
	if provider.subscriptions() != 1 {
		t.Fatalf("subscriptions = %d, want 1", provider.subscriptions())
	}

	provider.notify()
	waitInvalid(t, s)

	// A second notification on the dead source is dropped silently.
	provider.notify()
	time.Sleep(20 * time.Millisecond)
	if s.State() != StateInvalidated {
		t.Errorf("state = %s", s.State())
	}
}

func TestSourceInvalidateIsIdempotent(t *testing.T) {
	provider := newFakeProvider(5)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	var calls int
	s.OnInvalidate(func() { calls++ })

	s.Invalidate()
	s.Invalidate()
	s.Invalidate()

	if calls != 1 {
		t.Errorf("invalidate callbacks ran %d times, want 1", calls)
	}
}

func TestSourceParentCancellationInvalidates(t *testing.T) {
	provider := newFakeProvider(5)
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSource[string](ctx, provider, domain.DefaultQueryParams(), testLogger())

	if _, err := s.LoadInitial(context.Background(), 0, 5); err != nil {
		t.Fatalf("load initial: %v", err)
	}

	cancel()
	waitInvalid(t, s)
}

func TestSourceLoadAfterInvalidation(t *testing.T) {
	provider := newFakeProvider(5)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	s.Invalidate()

	if _, err := s.LoadInitial(context.Background(), 0, 5); !errors.Is(err, ErrInvalidated) {
		t.Errorf("LoadInitial on invalid source: %v", err)
	}
	if _, err := s.LoadRange(context.Background(), 0, 5); !errors.Is(err, ErrInvalidated) {
		t.Errorf("LoadRange on invalid source: %v", err)
	}
}

func TestSourceLoadRange(t *testing.T) {
	provider := newFakeProvider(10)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	if _, err := s.LoadInitial(context.Background(), 0, 4); err != nil {
		t.Fatalf("load initial: %v", err)
	}

	items, err := s.LoadRange(context.Background(), 4, 4)
	if err != nil {
		t.Fatalf("load range: %v", err)
	}
	if len(items) != 4 || items[0] != "item-04" {
		t.Errorf("items = %v", items)
	}
	if s.State() != StateStable {
		t.Errorf("state = %s, want stable", s.State())
	}
}

func TestSourceProviderErrorInvalidates(t *testing.T) {
	provider := newFakeProvider(5)
	provider.totalErr = errors.New("store down")
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	if _, err := s.LoadInitial(context.Background(), 0, 5); err == nil {
		t.Fatal("expected error")
	}
	if !s.Invalid() {
		t.Error("source should be invalid after provider failure")
	}
}

func TestSourceOnInvalidateAfterTheFactRunsImmediately(t *testing.T) {
	provider := newFakeProvider(5)
	s := NewSource[string](context.Background(), provider, domain.DefaultQueryParams(), testLogger())

	s.Invalidate()

	ran := false
	s.OnInvalidate(func() { ran = true })
	if !ran {
		t.Error("callback registered after invalidation should run immediately")
	}
}
