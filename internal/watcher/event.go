// Package watcher monitors the comics directory for archive changes.
package watcher

import "time"

// EventType classifies a filesystem change.
type EventType int

const (
	// EventAdded means a comic archive appeared or finished changing.
	EventAdded EventType = iota
	// EventRemoved means a comic archive disappeared.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a settled filesystem change to a comic archive.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}
