package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(filepath.Join(t.TempDir(), "state"), log)
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close state store: %v", err)
		}
	})
	return s
}

func TestComicListQueryDefaults(t *testing.T) {
	s := newTestStore(t)

	q, err := s.GetComicListQuery(context.Background())
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if !q.Equal(domain.DefaultQueryParams()) {
		t.Errorf("expected default query, got %+v", q)
	}
}

func TestComicListQueryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := domain.DefaultQueryParams().
		WithTitle("saga").
		WithSort(domain.SortAddedDesc).
		WithFilter(domain.Filter{Group: domain.FilterGroupCompletion, Kind: domain.FilterNotCompleted})

	if err := s.SaveComicListQuery(ctx, want); err != nil {
		t.Fatalf("save query: %v", err)
	}

	got, err := s.GetComicListQuery(ctx)
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestComicListQueryInvalidSortFallsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := domain.DefaultQueryParams()
	q.Sort = "by_vibes"
	if err := s.SaveComicListQuery(ctx, q); err != nil {
		t.Fatalf("save query: %v", err)
	}

	got, err := s.GetComicListQuery(ctx)
	if err != nil {
		t.Fatalf("get query: %v", err)
	}
	if got.Sort != domain.SortNameAsc {
		t.Errorf("sort = %q, want fallback %q", got.Sort, domain.SortNameAsc)
	}
}

func TestComicListType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lt, err := s.GetComicListType(ctx)
	if err != nil {
		t.Fatalf("get list type: %v", err)
	}
	if lt != domain.ListTypeGrid {
		t.Errorf("default list type = %q, want grid", lt)
	}

	if err := s.SaveComicListType(ctx, domain.ListTypeList); err != nil {
		t.Fatalf("save list type: %v", err)
	}

	lt, err = s.GetComicListType(ctx)
	if err != nil {
		t.Fatalf("get list type: %v", err)
	}
	if lt != domain.ListTypeList {
		t.Errorf("list type = %q, want list", lt)
	}
}

func TestScreenStateLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetScreenState(ctx, "sess-a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	key := 3
	want := &domain.ScreenState{SearchText: "bone", LastPageKey: &key}
	if err := s.SaveScreenState(ctx, "sess-a", want); err != nil {
		t.Fatalf("save screen state: %v", err)
	}

	got, err := s.GetScreenState(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get screen state: %v", err)
	}
	if got.SearchText != "bone" {
		t.Errorf("search text = %q", got.SearchText)
	}
	if got.LastPageKey == nil || *got.LastPageKey != 3 {
		t.Errorf("last page key = %v, want 3", got.LastPageKey)
	}

	// States are per session.
	if _, err := s.GetScreenState(ctx, "sess-b"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other session, got %v", err)
	}

	if err := s.DeleteScreenState(ctx, "sess-a"); err != nil {
		t.Fatalf("delete screen state: %v", err)
	}
	if _, err := s.GetScreenState(ctx, "sess-a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
