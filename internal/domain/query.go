package domain

import "maps"

// Sort is the active ordering of the comic list.
type Sort string

// Sort orders. Name sorts use a case-folded sort key, date sorts fall back
// to name for equal timestamps so the order is stable.
const (
	SortNameAsc    Sort = "name_asc"
	SortNameDesc   Sort = "name_desc"
	SortAddedAsc   Sort = "added_asc"
	SortAddedDesc  Sort = "added_desc"
	SortOpenedAsc  Sort = "opened_asc"
	SortOpenedDesc Sort = "opened_desc"
)

// Valid reports whether s is a known sort order.
func (s Sort) Valid() bool {
	switch s {
	case SortNameAsc, SortNameDesc, SortAddedAsc, SortAddedDesc, SortOpenedAsc, SortOpenedDesc:
		return true
	}
	return false
}

// FilterKind selects which comics a filter group accepts.
type FilterKind string

// Filter kinds.
const (
	FilterCompleted    FilterKind = "completed"
	FilterNotCompleted FilterKind = "not_completed"
	FilterRemoved      FilterKind = "removed"
	FilterNotRemoved   FilterKind = "not_removed"
	FilterCorrupted    FilterKind = "corrupted"
	FilterNotCorrupted FilterKind = "not_corrupted"
)

// Filter group IDs. Each group holds at most one active filter.
const (
	FilterGroupCompletion = "completion"
	FilterGroupRemoved    = "removed"
	FilterGroupFile       = "file"
)

// Filter is one active filter within a filter group.
type Filter struct {
	Group string     `json:"group"`
	Kind  FilterKind `json:"kind"`
}

// QueryParams is an immutable description of the desired comic list: title
// search text, sort order, and the active filter per filter group. Build
// modified copies with the With methods; change detection everywhere is
// structural equality via Equal.
type QueryParams struct {
	Title   string            `json:"title,omitempty"`
	Sort    Sort              `json:"sort"`
	Filters map[string]Filter `json:"filters,omitempty"`
}

// DefaultQueryParams returns the query used before the user has touched
// anything: name ascending, removed comics hidden.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		Sort: SortNameAsc,
		Filters: map[string]Filter{
			FilterGroupRemoved: {Group: FilterGroupRemoved, Kind: FilterNotRemoved},
		},
	}
}

// WithTitle returns a copy with the title search text replaced.
func (q QueryParams) WithTitle(title string) QueryParams {
	out := q.clone()
	out.Title = title
	return out
}

// WithSort returns a copy with the sort order replaced.
func (q QueryParams) WithSort(sort Sort) QueryParams {
	out := q.clone()
	out.Sort = sort
	return out
}

// WithFilter returns a copy with the filter for f.Group set to f.
func (q QueryParams) WithFilter(f Filter) QueryParams {
	out := q.clone()
	out.Filters[f.Group] = f
	return out
}

// WithoutFilter returns a copy with the filter for the group cleared.
func (q QueryParams) WithoutFilter(group string) QueryParams {
	out := q.clone()
	delete(out.Filters, group)
	return out
}

// Equal reports structural equality with other.
func (q QueryParams) Equal(other QueryParams) bool {
	return q.Title == other.Title &&
		q.Sort == other.Sort &&
		maps.Equal(q.Filters, other.Filters)
}

// FiltersEqual reports whether only the filter set matches. The list screen
// uses this to decide whether the filter chips need a refresh.
func (q QueryParams) FiltersEqual(other QueryParams) bool {
	return maps.Equal(q.Filters, other.Filters)
}

// clone deep-copies q, never sharing the filter map with the original.
func (q QueryParams) clone() QueryParams {
	out := QueryParams{
		Title:   q.Title,
		Sort:    q.Sort,
		Filters: make(map[string]Filter, len(q.Filters)+1),
	}
	maps.Copy(out.Filters, q.Filters)
	return out
}
