package comiclist

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/paging"
	"github.com/comixapp/comix-server/internal/service"
	"github.com/comixapp/comix-server/internal/store/state"
)

const eventBuffer = 32

// Controller owns the comic list screen's state. It is the single writer
// of the list state and query parameters; reads are safe from any
// goroutine.
type Controller struct {
	provider *service.ComicListService
	marks    *service.MarkService
	library  *service.LibraryService
	adder    *service.AddService
	settings *state.Store
	logger   *slog.Logger

	factory *paging.SourceFactory[domain.Comic]

	// ctx bounds all flows the controller starts; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  ListState
	active *loadJob

	stateCh chan ListState
	events  chan Event
}

// loadJob is one running paging flow plus the parameters it was started
// with, used to spot duplicate load requests.
type loadJob struct {
	cancel   context.CancelFunc
	pageSize int
	initKey  int
	done     chan struct{}
}

func (j *loadJob) running() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}

// NewController creates a controller with query parameters restored from
// the settings store.
func NewController(
	ctx context.Context,
	provider *service.ComicListService,
	marks *service.MarkService,
	library *service.LibraryService,
	adder *service.AddService,
	settings *state.Store,
	logger *slog.Logger,
) (*Controller, error) {
	query, err := settings.GetComicListQuery(ctx)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		provider: provider,
		marks:    marks,
		library:  library,
		adder:    adder,
		settings: settings,
		logger:   logger,
		factory:  paging.NewSourceFactory[domain.Comic](provider, query, logger),
		ctx:      cctx,
		cancel:   cancel,
		state:    ListState{Kind: StateIdle},
		stateCh:  make(chan ListState, 1),
		events:   make(chan Event, eventBuffer),
	}, nil
}

// Close stops the active paging flow and releases the controller.
func (c *Controller) Close() {
	c.cancel()
}

// State returns the current list state.
func (c *Controller) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StateChanges returns a stream of list states with last-value-wins
// buffering: a slow consumer sees the latest state, not every
// intermediate one.
func (c *Controller) StateChanges() <-chan ListState {
	return c.stateCh
}

// Events returns the one-shot event stream. Single consumer; events are
// dropped with a log line if nothing is draining the channel.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) setListState(s ListState) {
	c.mu.Lock()
	c.state = s
	// Replace a stale undelivered state instead of blocking.
	select {
	case c.stateCh <- s:
	default:
		select {
		case <-c.stateCh:
		default:
		}
		select {
		case c.stateCh <- s:
		default:
		}
	}
	c.mu.Unlock()
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("dropped list event", "event", ev)
	}
}

func (c *Controller) fail(operation string, err error) {
	c.logger.Error("list operation failed", "operation", operation, "error", err)
	c.emit(OperationFailed{Operation: operation, Err: err})
}

// LoadList starts the paging flow for the given window size and initial
// key. A request identical to the one already running is a no-op; a
// different one cancels the running flow and replaces it. Reports
// whether a new flow was started.
func (c *Controller) LoadList(pageSize, initKey int) bool {
	c.mu.Lock()
	if c.active != nil && c.active.running() &&
		c.active.pageSize == pageSize && c.active.initKey == initKey {
		c.mu.Unlock()
		return false
	}
	prev := c.active

	jobCtx, cancel := context.WithCancel(c.ctx)
	job := &loadJob{
		cancel:   cancel,
		pageSize: pageSize,
		initKey:  initKey,
		done:     make(chan struct{}),
	}
	c.active = job
	c.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	c.setListState(ListState{Kind: StateLoading})

	pager := paging.NewPager(c.factory, paging.Config{
		PageSize:   pageSize,
		InitialKey: initKey,
	}, c.logger)
	pager.OnError(func(err error) {
		c.fail("load_list", err)
	})

	go func() {
		defer close(job.done)

		for window := range pager.Windows(jobCtx) {
			w := window
			c.setListState(ListState{Kind: StateLoaded, Window: &w})
		}

		// Flow over (cancelled or controller closed): back to idle,
		// unless a newer flow already took over.
		c.mu.Lock()
		mine := c.active == job
		if mine {
			c.active = nil
		}
		c.mu.Unlock()
		if mine {
			c.setListState(ListState{Kind: StateIdle})
		}
	}()

	return true
}

// CancelLoad stops the active paging flow, if any.
func (c *Controller) CancelLoad() {
	c.mu.Lock()
	job := c.active
	c.mu.Unlock()

	if job != nil {
		job.cancel()
	}
}

// CurrentPageLastKey returns the last key of the loaded window for
// scroll-position restoration. False outside the loaded state.
func (c *Controller) CurrentPageLastKey() (int, bool) {
	return c.State().LastKey()
}

// QueryParams returns the active query parameters.
func (c *Controller) QueryParams() domain.QueryParams {
	return c.factory.QueryParams()
}

// SetQueryParams replaces the query parameters. Equal parameters are a
// complete no-op: nothing is persisted and the current data source stays
// valid. Different parameters are persisted and invalidate the current
// source so the list reloads.
func (c *Controller) SetQueryParams(ctx context.Context, q domain.QueryParams) (QueryChange, error) {
	current := c.factory.QueryParams()
	if current.Equal(q) {
		return QueryChange{}, nil
	}

	change := QueryChange{
		Changed:        true,
		FiltersChanged: !current.FiltersEqual(q),
	}

	if err := c.settings.SaveComicListQuery(ctx, q); err != nil {
		return QueryChange{}, err
	}
	c.factory.SetQueryParams(q)

	return change, nil
}

// OnSortSelected applies a new sort order. Selecting the current order
// does nothing.
func (c *Controller) OnSortSelected(ctx context.Context, sort domain.Sort) (QueryChange, error) {
	current := c.factory.QueryParams()
	if current.Sort == sort {
		return QueryChange{}, nil
	}
	return c.SetQueryParams(ctx, current.WithSort(sort))
}

// OnSearchChanged applies new search text.
func (c *Controller) OnSearchChanged(ctx context.Context, title string) (QueryChange, error) {
	return c.SetQueryParams(ctx, c.factory.QueryParams().WithTitle(title))
}

// SetFilter adds or replaces a filter in its group.
func (c *Controller) SetFilter(ctx context.Context, f domain.Filter) (QueryChange, error) {
	return c.SetQueryParams(ctx, c.factory.QueryParams().WithFilter(f))
}

// ClearFilter removes the filter in the given group.
func (c *Controller) ClearFilter(ctx context.Context, group string) (QueryChange, error) {
	return c.SetQueryParams(ctx, c.factory.QueryParams().WithoutFilter(group))
}

// ListType returns the persisted presentation style.
func (c *Controller) ListType(ctx context.Context) (domain.ListType, error) {
	return c.settings.GetComicListType(ctx)
}

// SetListType persists the presentation style.
func (c *Controller) SetListType(ctx context.Context, lt domain.ListType) error {
	return c.settings.SaveComicListType(ctx, lt)
}

// LibraryState returns the library collaborator's activity state.
func (c *Controller) LibraryState() domain.LibraryState {
	return c.library.State()
}

// Sync asks the library to reconcile with the comics directory. The call
// returns immediately; failures surface as one-shot events. A sync
// already in flight is left alone.
func (c *Controller) Sync() {
	go func() {
		if _, err := c.library.Sync(c.ctx); err != nil && !errors.Is(err, service.ErrSyncInProgress) {
			c.fail("sync", err)
		}
	}()
}

// Add imports archive paths through the add service and republishes each
// result as a one-shot event. Empty input is a no-op.
func (c *Controller) Add(paths []string, mode domain.AddMode, flags domain.AddFlag) {
	if len(paths) == 0 {
		return
	}

	go func() {
		for res := range c.adder.Add(c.ctx, paths, mode, flags) {
			c.emit(ComicAdded{Result: res})
		}
	}()
}

// SetRemovedState sets or clears the removed mark. On a real transition
// to removed, exactly one ComicsMarkedAsRemoved event carries the ids so
// the screen can offer undo. Clearing the mark never emits.
func (c *Controller) SetRemovedState(ctx context.Context, ids []string, removed bool) error {
	transitioned, err := c.marks.SetRemoved(ctx, ids, removed)
	if err != nil {
		return err
	}
	if transitioned && removed {
		c.emit(ComicsMarkedAsRemoved{ComicIDs: ids})
	}
	return nil
}

// PermanentRemove deletes comics for good. Irreversible.
func (c *Controller) PermanentRemove(ctx context.Context, ids []string) error {
	return c.library.Delete(ctx, ids)
}

// Rename changes a comic's title.
func (c *Controller) Rename(ctx context.Context, id, title string) (*domain.Comic, error) {
	return c.provider.Rename(ctx, id, title)
}

// ToggleCompletedMark flips one comic's completed mark.
func (c *Controller) ToggleCompletedMark(ctx context.Context, id string) (*domain.Comic, error) {
	return c.marks.ToggleCompleted(ctx, id)
}

// SetCompletedMark sets the completed mark on a batch of comics.
func (c *Controller) SetCompletedMark(ctx context.Context, ids []string, completed bool) error {
	return c.marks.SetCompleted(ctx, ids, completed)
}
