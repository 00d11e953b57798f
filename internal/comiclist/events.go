package comiclist

import "github.com/comixapp/comix-server/internal/service"

// Event is a one-shot occurrence on the list screen, delivered at most
// once to the single consumer of Events().
type Event interface {
	isListEvent()
}

// ComicsMarkedAsRemoved fires when comics transition to removed, so the
// screen can offer undo.
type ComicsMarkedAsRemoved struct {
	ComicIDs []string
}

func (ComicsMarkedAsRemoved) isListEvent() {}

// ComicAdded republishes one add-flow result.
type ComicAdded struct {
	Result service.AddResult
}

func (ComicAdded) isListEvent() {}

// OperationFailed carries a background failure the screen should surface.
type OperationFailed struct {
	Operation string
	Err       error
}

func (OperationFailed) isListEvent() {}
