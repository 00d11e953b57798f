package paging

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config sizes a paging flow.
type Config struct {
	// PageSize is the window size for the initial load.
	PageSize int
	// InitialKey is the item index the first window should cover.
	// Clients restoring scroll position pass the saved last key.
	InitialKey int
	// RetryDelay spaces out reloads after provider failures.
	// Zero means the default.
	RetryDelay time.Duration
}

const defaultRetryDelay = 500 * time.Millisecond

// Pager runs a paging flow: it creates a source, loads the initial
// window, delivers it, and starts over with a fresh source every time
// the current one invalidates. The flow ends when its context is
// cancelled.
type Pager[T any] struct {
	factory *SourceFactory[T]
	cfg     Config
	logger  *slog.Logger
	onError func(error)
}

// NewPager creates a pager over the factory.
func NewPager[T any](factory *SourceFactory[T], cfg Config, logger *slog.Logger) *Pager[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Pager[T]{
		factory: factory,
		cfg:     cfg,
		logger:  logger,
	}
}

// OnError registers a callback for provider failures. The flow keeps
// retrying after reporting; without a callback failures are only logged.
func (p *Pager[T]) OnError(fn func(error)) {
	p.onError = fn
}

// Windows starts the flow and returns the stream of loaded windows.
// Each delivered window reflects one stable generation of the data; a
// new window follows every invalidation. The channel closes when ctx is
// cancelled.
func (p *Pager[T]) Windows(ctx context.Context) <-chan Window[T] {
	out := make(chan Window[T], 1)

	go func() {
		defer close(out)

		for ctx.Err() == nil {
			source := p.factory.Create(ctx)

			window, err := source.LoadInitial(ctx, p.cfg.InitialKey, p.cfg.PageSize)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// A short window already invalidated the source;
				// recreate immediately. Anything else is a provider
				// failure: report, pause, retry.
				if !errors.Is(err, ErrInvalidated) {
					p.logger.Error("initial window load failed", "error", err)
					if p.onError != nil {
						p.onError(err)
					}
					select {
					case <-time.After(p.cfg.RetryDelay):
					case <-ctx.Done():
						return
					}
				}
				continue
			}

			select {
			case out <- *window:
			case <-ctx.Done():
				return
			}

			// Wait for this generation to go stale.
			invalidated := make(chan struct{})
			source.OnInvalidate(func() { close(invalidated) })

			select {
			case <-invalidated:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
