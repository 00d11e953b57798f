package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/media/covers"
	"github.com/comixapp/comix-server/internal/scanner"
	"github.com/comixapp/comix-server/internal/search"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/internal/store"
	"github.com/comixapp/comix-server/internal/store/sqlite"
	"github.com/comixapp/comix-server/internal/watcher"
)

// ErrSyncInProgress is returned when a sync is requested while one is
// already running.
var ErrSyncInProgress = errors.New("library sync already in progress")

// LibraryService owns the comics directory: it syncs the database against
// the files on disk, permanently deletes comics, and reacts to filesystem
// events from the watcher. It also tracks the library's activity state
// for list clients.
type LibraryService struct {
	store      *sqlite.Store
	scanner    *scanner.Scanner
	search     *search.SearchIndex
	covers     *covers.Storage
	sseManager *sse.Manager
	logger     *slog.Logger

	libraryPath string

	mu      sync.Mutex
	state   domain.LibraryState
	syncing bool
}

// NewLibraryService creates a new library service rooted at libraryPath.
func NewLibraryService(
	st *sqlite.Store,
	sc *scanner.Scanner,
	idx *search.SearchIndex,
	coverStorage *covers.Storage,
	sseManager *sse.Manager,
	libraryPath string,
	logger *slog.Logger,
) *LibraryService {
	return &LibraryService{
		store:       st,
		scanner:     sc,
		search:      idx,
		covers:      coverStorage,
		sseManager:  sseManager,
		logger:      logger,
		libraryPath: libraryPath,
		state:       domain.LibraryIdle,
	}
}

// Path returns the comics directory this library serves.
func (s *LibraryService) Path() string {
	return s.libraryPath
}

// State returns the library's current activity state.
func (s *LibraryService) State() domain.LibraryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setState transitions the activity state and tells connected clients.
func (s *LibraryService) setState(state domain.LibraryState) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()

	s.sseManager.Emit(sse.NewLibraryStateEvent(state))
}

// Sync reconciles the database with the comics directory and rebuilds
// the search index from the result. Only one sync runs at a time.
func (s *LibraryService) Sync(ctx context.Context) (*scanner.ScanSummary, error) {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.syncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
		s.setState(domain.LibraryIdle)
	}()

	s.setState(domain.LibrarySyncing)
	s.sseManager.Emit(sse.NewSyncStartedEvent())

	// 1. Reconcile files with the database.
	summary, err := s.scanner.Scan(ctx, s.libraryPath)
	if err != nil {
		s.sseManager.Emit(sse.NewErrorEvent("sync", err.Error()))
		return nil, err
	}

	// 2. Rebuild the search index from the synced library.
	if err := s.reindex(ctx); err != nil {
		s.logger.Error("search reindex failed after sync", "error", err)
		s.sseManager.Emit(sse.NewErrorEvent("sync", err.Error()))
	}

	s.logger.Info("library sync complete",
		"scanned", summary.Scanned,
		"added", summary.Added,
		"updated", summary.Updated,
		"missing", summary.Missing,
		"corrupted", summary.Corrupted,
		"duration", summary.Duration)
	s.sseManager.Emit(sse.NewSyncCompleteEvent(summary.Added, summary.Updated, summary.Missing))

	return summary, nil
}

// reindex replaces the search index contents with the current library.
func (s *LibraryService) reindex(ctx context.Context) error {
	comics, err := s.store.ListAllComics(ctx)
	if err != nil {
		return err
	}

	if err := s.search.Rebuild(); err != nil {
		return err
	}

	docs := make([]*search.ComicDocument, 0, len(comics))
	for i := range comics {
		docs = append(docs, search.NewComicDocument(&comics[i]))
	}
	return s.search.IndexComics(docs)
}

// Delete permanently removes comics: database rows, stored covers, and
// search documents. Archive files on disk are left alone.
func (s *LibraryService) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.setState(domain.LibraryChanging)
	defer s.setState(domain.LibraryIdle)

	// 1. Database rows first; a failure here aborts the whole delete.
	if err := s.store.DeleteComics(ctx, ids); err != nil {
		return err
	}

	// 2. Covers and search documents are best-effort cleanup.
	for _, id := range ids {
		if err := s.covers.Delete(id); err != nil {
			s.logger.Warn("failed to delete cover", "comic_id", id, "error", err)
		}
	}
	if err := s.search.DeleteComics(ids); err != nil {
		s.logger.Warn("failed to delete search documents", "error", err)
	}

	s.logger.Info("permanently deleted comics", "count", len(ids))
	s.sseManager.Emit(sse.NewComicDeletedEvent(ids))

	return nil
}

// Watch consumes filesystem events until ctx is cancelled. New settled
// archives are imported; removed archives get their comic marked removed.
func (s *LibraryService) Watch(ctx context.Context, w *watcher.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			s.handleFileEvent(ctx, ev)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

func (s *LibraryService) handleFileEvent(ctx context.Context, ev watcher.Event) {
	s.setState(domain.LibraryChanging)
	defer s.setState(domain.LibraryIdle)

	switch ev.Type {
	case watcher.EventAdded:
		s.importPath(ctx, ev)
	case watcher.EventRemoved:
		s.removePath(ctx, ev.Path)
	}
}

func (s *LibraryService) importPath(ctx context.Context, ev watcher.Event) {
	// An event for a path we already track means the file was rewritten
	// in place; refresh the record instead of importing a duplicate.
	if existing, err := s.store.GetComicByPath(ctx, ev.Path); err == nil {
		s.refreshComic(ctx, existing, ev)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("failed to look up comic by path", "path", ev.Path, "error", err)
		return
	}

	relPath, err := filepath.Rel(s.libraryPath, ev.Path)
	if err != nil {
		relPath = filepath.Base(ev.Path)
	}

	comic, err := s.scanner.ImportFile(ctx, scanner.ScannedFile{
		Path:    ev.Path,
		RelPath: relPath,
		Size:    ev.Size,
		ModTime: ev.ModTime,
	})
	if err != nil {
		s.logger.Error("failed to import watched file", "path", ev.Path, "error", err)
		s.sseManager.Emit(sse.NewErrorEvent("watch", err.Error()))
		return
	}

	if err := s.search.IndexComic(search.NewComicDocument(comic)); err != nil {
		s.logger.Warn("failed to index imported comic", "comic_id", comic.ID, "error", err)
	}

	s.logger.Info("imported watched file", "path", ev.Path, "comic_id", comic.ID)
	s.sseManager.Emit(sse.NewComicEvent(sse.EventComicAdded, comic))
}

func (s *LibraryService) refreshComic(ctx context.Context, comic *domain.Comic, ev watcher.Event) {
	comic.Size = ev.Size
	comic.Removed = false
	comic.Touch()
	if err := s.store.UpdateComic(ctx, comic); err != nil {
		s.logger.Error("failed to refresh comic", "comic_id", comic.ID, "error", err)
		return
	}
	s.sseManager.Emit(sse.NewComicEvent(sse.EventComicUpdated, comic))
}

func (s *LibraryService) removePath(ctx context.Context, path string) {
	comic, err := s.store.GetComicByPath(ctx, path)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to look up comic by path", "path", path, "error", err)
		}
		return
	}

	if err := s.store.SetRemoved(ctx, []string{comic.ID}, true); err != nil {
		s.logger.Error("failed to mark comic removed", "comic_id", comic.ID, "error", err)
		return
	}

	s.logger.Info("marked watched comic removed", "path", path, "comic_id", comic.ID)
	s.sseManager.Emit(sse.NewComicsEvent(sse.EventComicUpdated, []string{comic.ID}))
}

// ImportArchive imports a single archive path into the library. Used by
// the add flow once a file has been placed or linked. A path the library
// already tracks is refreshed in place instead of duplicated.
func (s *LibraryService) ImportArchive(ctx context.Context, path string) (*domain.Comic, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	relPath, err := filepath.Rel(s.libraryPath, path)
	if err != nil {
		relPath = filepath.Base(path)
	}

	file := scanner.ScannedFile{
		Path:    path,
		RelPath: relPath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	if existing, err := s.store.GetComicByPath(ctx, path); err == nil {
		if err := s.scanner.RefreshFile(ctx, scanner.FileUpdate{ComicID: existing.ID, File: file}); err != nil {
			return nil, err
		}
		comic, err := s.store.GetComic(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if err := s.search.IndexComic(search.NewComicDocument(comic)); err != nil {
			s.logger.Warn("failed to index refreshed comic", "comic_id", comic.ID, "error", err)
		}
		s.sseManager.Emit(sse.NewComicEvent(sse.EventComicUpdated, comic))
		return comic, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	comic, err := s.scanner.ImportFile(ctx, file)
	if err != nil {
		return nil, err
	}

	if err := s.search.IndexComic(search.NewComicDocument(comic)); err != nil {
		s.logger.Warn("failed to index imported comic", "comic_id", comic.ID, "error", err)
	}

	s.sseManager.Emit(sse.NewComicEvent(sse.EventComicAdded, comic))
	return comic, nil
}
