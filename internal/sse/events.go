// Package sse implements Server-Sent Events for real-time library updates.
package sse

import (
	"time"

	"github.com/comixapp/comix-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventComicAdded represents a comic being added to the library.
	EventComicAdded EventType = "comic.added"
	// EventComicUpdated represents a comic metadata update (rename,
	// completed mark, removed mark, refreshed archive).
	EventComicUpdated EventType = "comic.updated"
	// EventComicDeleted represents a permanent comic deletion.
	EventComicDeleted EventType = "comic.deleted"

	// EventLibraryStateChanged fires whenever the library transitions
	// between idle, syncing, and changing.
	EventLibraryStateChanged EventType = "library.state_changed"
	// EventSyncStarted represents a library sync start event.
	EventSyncStarted EventType = "library.sync_started"
	// EventSyncComplete represents a library sync completion event.
	EventSyncComplete EventType = "library.sync_completed"

	// EventAddProgress reports progress while importing comic files.
	EventAddProgress EventType = "add.progress"
	// EventAddComplete represents the end of an add operation.
	EventAddComplete EventType = "add.completed"

	// EventError carries a user-visible failure from a background operation.
	EventError EventType = "error"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct
// deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// ComicEventData is the data payload for comic events.
type ComicEventData struct {
	Comic *domain.Comic `json:"comic"`
}

// ComicsEventData is the data payload for batch comic events. Bulk marks
// (removed, completed) touch many comics in one user action.
type ComicsEventData struct {
	ComicIDs []string `json:"comic_ids"`
}

// ComicDeletedEventData is the data payload for comic delete events.
type ComicDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	ComicIDs  []string  `json:"comic_ids"`
}

// LibraryStateEventData is the data payload for library state events.
type LibraryStateEventData struct {
	State domain.LibraryState `json:"state"`
}

// SyncStartedEventData is the data payload for sync start events.
type SyncStartedEventData struct {
	StartedAt time.Time `json:"started_at"`
}

// SyncCompleteEventData is the data payload for sync complete events.
type SyncCompleteEventData struct {
	CompletedAt   time.Time `json:"completed_at"`
	ComicsAdded   int       `json:"comics_added"`
	ComicsUpdated int       `json:"comics_updated"`
	ComicsMissing int       `json:"comics_missing"`
}

// AddProgressEventData reports one imported file during an add operation.
type AddProgressEventData struct {
	Path      string `json:"path"`
	ComicID   string `json:"comic_id,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Error     string `json:"error,omitempty"`
}

// AddCompleteEventData is the data payload for add completion events.
type AddCompleteEventData struct {
	CompletedAt time.Time `json:"completed_at"`
	Imported    int       `json:"imported"`
	Failed      int       `json:"failed"`
}

// ErrorEventData is the data payload for error events.
type ErrorEventData struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewComicEvent creates a comic lifecycle event.
func NewComicEvent(eventType EventType, comic *domain.Comic) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      ComicEventData{Comic: comic},
	}
}

// NewComicsEvent creates a batch comic event.
func NewComicsEvent(eventType EventType, comicIDs []string) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      ComicsEventData{ComicIDs: comicIDs},
	}
}

// NewComicDeletedEvent creates a comic deletion event.
func NewComicDeletedEvent(comicIDs []string) Event {
	now := time.Now()
	return Event{
		Type:      EventComicDeleted,
		Timestamp: now,
		Data:      ComicDeletedEventData{DeletedAt: now, ComicIDs: comicIDs},
	}
}

// NewLibraryStateEvent creates a library state transition event.
func NewLibraryStateEvent(state domain.LibraryState) Event {
	return Event{
		Type:      EventLibraryStateChanged,
		Timestamp: time.Now(),
		Data:      LibraryStateEventData{State: state},
	}
}

// NewSyncStartedEvent creates a sync start event.
func NewSyncStartedEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventSyncStarted,
		Timestamp: now,
		Data:      SyncStartedEventData{StartedAt: now},
	}
}

// NewSyncCompleteEvent creates a sync completion event.
func NewSyncCompleteEvent(added, updated, missing int) Event {
	now := time.Now()
	return Event{
		Type:      EventSyncComplete,
		Timestamp: now,
		Data: SyncCompleteEventData{
			CompletedAt:   now,
			ComicsAdded:   added,
			ComicsUpdated: updated,
			ComicsMissing: missing,
		},
	}
}

// NewAddProgressEvent creates a progress event for one handled file
// during an add operation.
func NewAddProgressEvent(data AddProgressEventData) Event {
	return Event{
		Type:      EventAddProgress,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// NewAddCompleteEvent creates an add completion event.
func NewAddCompleteEvent(imported, failed int) Event {
	now := time.Now()
	return Event{
		Type:      EventAddComplete,
		Timestamp: now,
		Data: AddCompleteEventData{
			CompletedAt: now,
			Imported:    imported,
			Failed:      failed,
		},
	}
}

// NewErrorEvent creates an error event for a failed background operation.
func NewErrorEvent(operation, message string) Event {
	return Event{
		Type:      EventError,
		Timestamp: time.Now(),
		Data:      ErrorEventData{Operation: operation, Message: message},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}
