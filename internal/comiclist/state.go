// Package comiclist drives the comic list screen: it owns the current
// query parameters, runs the paging flow that loads list windows, and
// turns user intents (sync, add, rename, mark, remove) into service
// calls and one-shot events.
package comiclist

import (
	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/paging"
)

// StateKind is the loading phase of the list.
type StateKind string

const (
	// StateIdle means no paging flow is running. Initial and
	// terminal-on-cancel.
	StateIdle StateKind = "idle"
	// StateLoading means a paging flow has started but no window has
	// arrived yet.
	StateLoading StateKind = "loading"
	// StateLoaded means a window is available.
	StateLoaded StateKind = "loaded"
)

// ListState is the list screen's loading state. Window is set only when
// Kind is StateLoaded.
type ListState struct {
	Kind   StateKind
	Window *paging.Window[domain.Comic]
}

// LastKey returns the key of the last item in the loaded window. The
// second return is false outside StateLoaded.
func (s ListState) LastKey() (int, bool) {
	if s.Kind != StateLoaded || s.Window == nil {
		return 0, false
	}
	return s.Window.LastKey(), true
}

// QueryChange reports what a query-parameter update actually changed.
type QueryChange struct {
	// Changed is false when the new parameters equal the old ones; no
	// persistence or reload happened.
	Changed bool
	// FiltersChanged is true when the active filter set differs, which
	// the list screen uses to refresh its filter chips.
	FiltersChanged bool
}
