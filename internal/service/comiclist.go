package service

import (
	"context"
	"log/slog"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/search"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/internal/store"
	"github.com/comixapp/comix-server/internal/store/sqlite"
)

// ComicListService serves the comic list: windowed queries over the store,
// staleness signals for pagers, and the per-comic edits the list screen
// performs. It satisfies the paging provider contract for domain.Comic.
type ComicListService struct {
	store      *sqlite.Store
	bus        *store.Bus
	search     *search.SearchIndex
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewComicListService creates a new comic list service.
func NewComicListService(st *sqlite.Store, bus *store.Bus, idx *search.SearchIndex, sseManager *sse.Manager, logger *slog.Logger) *ComicListService {
	return &ComicListService{
		store:      st,
		bus:        bus,
		search:     idx,
		sseManager: sseManager,
		logger:     logger,
	}
}

// Total returns the number of comics matching the query.
func (s *ComicListService) Total(ctx context.Context, q domain.QueryParams) (int64, error) {
	return s.store.CountComics(ctx, q)
}

// Window returns up to size comics starting at offset, in query order.
func (s *ComicListService) Window(ctx context.Context, offset, size int, q domain.QueryParams) ([]domain.Comic, error) {
	return s.store.ListComicsWindow(ctx, offset, size, q)
}

// SubscribeInvalidation returns a channel that signals once the results
// for the query may have changed, and a cancel func releasing the
// subscription. Every store mutation counts as a potential change; pagers
// re-query rather than patch, so over-signalling is harmless.
func (s *ComicListService) SubscribeInvalidation(_ domain.QueryParams) (<-chan struct{}, func()) {
	changes, cancel := s.bus.Subscribe(8)

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	return out, cancel
}

// Get returns a single comic by ID.
func (s *ComicListService) Get(ctx context.Context, id string) (*domain.Comic, error) {
	return s.store.GetComic(ctx, id)
}

// Rename changes a comic's display title. The sort key is recomputed by
// the store so the list reorders on the next window load.
func (s *ComicListService) Rename(ctx context.Context, id, title string) (*domain.Comic, error) {
	// 1. Persist the new title.
	comic, err := s.store.RenameComic(ctx, id, title)
	if err != nil {
		return nil, err
	}

	// 2. Keep the search index in step.
	if err := s.search.IndexComic(search.NewComicDocument(comic)); err != nil {
		s.logger.Warn("failed to reindex renamed comic",
			"comic_id", id,
			"error", err)
	}

	// 3. Tell connected clients.
	s.sseManager.Emit(sse.NewComicEvent(sse.EventComicUpdated, comic))

	return comic, nil
}

// MarkOpened records that a comic was opened at the given page position.
func (s *ComicListService) MarkOpened(ctx context.Context, id string, position int) error {
	if err := s.store.MarkOpened(ctx, id, position); err != nil {
		return err
	}

	s.sseManager.Emit(sse.NewComicsEvent(sse.EventComicUpdated, []string{id}))
	return nil
}
