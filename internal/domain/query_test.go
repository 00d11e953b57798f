package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryParams_Equal(t *testing.T) {
	base := DefaultQueryParams()

	tests := []struct {
		name  string
		other QueryParams
		equal bool
	}{
		{"default equals default", DefaultQueryParams(), true},
		{"title differs", base.WithTitle("hellboy"), false},
		{"sort differs", base.WithSort(SortAddedDesc), false},
		{"filter added", base.WithFilter(Filter{Group: FilterGroupCompletion, Kind: FilterCompleted}), false},
		{"filter removed", base.WithoutFilter(FilterGroupRemoved), false},
		{"same filter re-applied", base.WithFilter(Filter{Group: FilterGroupRemoved, Kind: FilterNotRemoved}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, base.Equal(tt.other))
		})
	}
}

func TestQueryParams_BuildersDoNotMutate(t *testing.T) {
	base := DefaultQueryParams()

	modified := base.WithTitle("akira").
		WithSort(SortOpenedDesc).
		WithFilter(Filter{Group: FilterGroupCompletion, Kind: FilterNotCompleted})

	// The original must be untouched.
	assert.Equal(t, "", base.Title)
	assert.Equal(t, SortNameAsc, base.Sort)
	assert.Len(t, base.Filters, 1)

	assert.Equal(t, "akira", modified.Title)
	assert.Equal(t, SortOpenedDesc, modified.Sort)
	assert.Len(t, modified.Filters, 2)
}

func TestQueryParams_FiltersEqual(t *testing.T) {
	base := DefaultQueryParams()

	// Title and sort changes keep the filter set equal.
	assert.True(t, base.FiltersEqual(base.WithTitle("x").WithSort(SortAddedAsc)))
	assert.False(t, base.FiltersEqual(base.WithoutFilter(FilterGroupRemoved)))
}

func TestSort_Valid(t *testing.T) {
	assert.True(t, SortNameAsc.Valid())
	assert.True(t, SortOpenedDesc.Valid())
	assert.False(t, Sort("by_thickness").Valid())
	assert.False(t, Sort("").Valid())
}
