package paging

import (
	"context"
	"testing"

	"github.com/comixapp/comix-server/internal/domain"
)

func TestFactoryCreateTracksCurrent(t *testing.T) {
	provider := newFakeProvider(10)
	f := NewSourceFactory[string](provider, domain.DefaultQueryParams(), testLogger())

	s1 := f.Create(context.Background())
	if f.Current() != s1 {
		t.Error("factory should track the latest source")
	}

	s2 := f.Create(context.Background())
	if s1 == s2 {
		t.Error("Create must return a fresh source every time")
	}
	if f.Current() != s2 {
		t.Error("factory should track the latest source")
	}
}

func TestFactorySetQueryParamsEqualIsNoOp(t *testing.T) {
	provider := newFakeProvider(10)
	q := domain.DefaultQueryParams()
	f := NewSourceFactory[string](provider, q, testLogger())

	s := f.Create(context.Background())

	// Structurally equal params, separately constructed.
	if changed := f.SetQueryParams(domain.DefaultQueryParams()); changed {
		t.Error("equal params must not report a change")
	}
	if s.Invalid() {
		t.Error("equal params must not invalidate the current source")
	}
}

func TestFactorySetQueryParamsDifferentInvalidates(t *testing.T) {
	provider := newFakeProvider(10)
	f := NewSourceFactory[string](provider, domain.DefaultQueryParams(), testLogger())

	s := f.Create(context.Background())

	q := domain.DefaultQueryParams().WithSort(domain.SortAddedDesc)
	if changed := f.SetQueryParams(q); !changed {
		t.Error("different params must report a change")
	}
	if !s.Invalid() {
		t.Error("different params must invalidate the current source")
	}
	if !f.QueryParams().Equal(q) {
		t.Errorf("factory params = %+v, want %+v", f.QueryParams(), q)
	}

	// The next source is built from the new params.
	s2 := f.Create(context.Background())
	if !s2.Query().Equal(q) {
		t.Errorf("new source query = %+v, want %+v", s2.Query(), q)
	}
}

func TestFactorySetQueryParamsBeforeAnySource(t *testing.T) {
	provider := newFakeProvider(10)
	f := NewSourceFactory[string](provider, domain.DefaultQueryParams(), testLogger())

	q := domain.DefaultQueryParams().WithTitle("saga")
	if changed := f.SetQueryParams(q); !changed {
		t.Error("different params must report a change even with no source yet")
	}
}
