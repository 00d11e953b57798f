package service

import (
	"context"
	"log/slog"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/internal/store/sqlite"
)

// MarkService flips the per-comic marks the list screen edits: completed
// and removed. Removal here is soft — the comic stays in the store so the
// action can be undone; permanent deletion is the library's job.
type MarkService struct {
	store      *sqlite.Store
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewMarkService creates a new mark service.
func NewMarkService(st *sqlite.Store, sseManager *sse.Manager, logger *slog.Logger) *MarkService {
	return &MarkService{
		store:      st,
		sseManager: sseManager,
		logger:     logger,
	}
}

// ToggleCompleted flips the completed mark on one comic and returns the
// updated record.
func (s *MarkService) ToggleCompleted(ctx context.Context, id string) (*domain.Comic, error) {
	completed, err := s.store.ToggleCompleted(ctx, id)
	if err != nil {
		return nil, err
	}

	comic, err := s.store.GetComic(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("toggled completed mark",
		"comic_id", id,
		"completed", completed)
	s.sseManager.Emit(sse.NewComicEvent(sse.EventComicUpdated, comic))

	return comic, nil
}

// SetCompleted sets the completed mark on a batch of comics.
func (s *MarkService) SetCompleted(ctx context.Context, ids []string, completed bool) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.store.SetCompleted(ctx, ids, completed); err != nil {
		return err
	}

	s.sseManager.Emit(sse.NewComicsEvent(sse.EventComicUpdated, ids))
	return nil
}

// SetRemoved sets or clears the removed mark on a batch of comics.
// Reports whether any comic actually changed to removed, so callers can
// surface a one-shot "marked as removed" notification only on a real
// transition.
func (s *MarkService) SetRemoved(ctx context.Context, ids []string, removed bool) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}

	// 1. Find which comics would actually transition.
	transitioned := false
	if removed {
		for _, id := range ids {
			comic, err := s.store.GetComic(ctx, id)
			if err != nil {
				return false, err
			}
			if !comic.Removed {
				transitioned = true
				break
			}
		}
	}

	// 2. Apply the flag.
	if err := s.store.SetRemoved(ctx, ids, removed); err != nil {
		return false, err
	}

	s.logger.Info("set removed mark",
		"comics", len(ids),
		"removed", removed)
	s.sseManager.Emit(sse.NewComicsEvent(sse.EventComicUpdated, ids))

	return transitioned, nil
}
