package state

import (
	"context"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/store"
)

const (
	comicListQueryKey = "settings:comic-list-query"
	comicListTypeKey  = "settings:comic-list-type"
	screenStatePrefix = "screen:"
)

// ErrScreenStateNotFound is returned when no screen state exists for a session.
var ErrScreenStateNotFound = store.ErrNotFound.WithMessage("screen state not found")

// GetComicListQuery returns the persisted comic list query, or the default
// query when none has been saved yet.
func (s *Store) GetComicListQuery(ctx context.Context) (domain.QueryParams, error) {
	if err := ctx.Err(); err != nil {
		return domain.QueryParams{}, err
	}

	var q domain.QueryParams
	err := s.get([]byte(comicListQueryKey), &q)
	if isNotFound(err) {
		return domain.DefaultQueryParams(), nil
	}
	if err != nil {
		return domain.QueryParams{}, err
	}

	// Stored queries from older versions may carry a sort the current
	// build no longer knows. Fall back rather than fail.
	if !q.Sort.Valid() {
		q.Sort = domain.SortNameAsc
	}
	return q, nil
}

// SaveComicListQuery persists the comic list query.
func (s *Store) SaveComicListQuery(ctx context.Context, q domain.QueryParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(comicListQueryKey), q)
}

// GetComicListType returns the persisted list presentation mode, or the
// grid default when none has been saved.
func (s *Store) GetComicListType(ctx context.Context) (domain.ListType, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var lt domain.ListType
	err := s.get([]byte(comicListTypeKey), &lt)
	if isNotFound(err) {
		return domain.ListTypeGrid, nil
	}
	if err != nil {
		return "", err
	}
	return lt, nil
}

// SaveComicListType persists the list presentation mode.
func (s *Store) SaveComicListType(ctx context.Context, lt domain.ListType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(comicListTypeKey), lt)
}

// GetScreenState returns the saved screen state for a session.
func (s *Store) GetScreenState(ctx context.Context, sessionID string) (*domain.ScreenState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var st domain.ScreenState
	err := s.get([]byte(screenStatePrefix+sessionID), &st)
	if isNotFound(err) {
		return nil, ErrScreenStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveScreenState persists the screen state for a session.
func (s *Store) SaveScreenState(ctx context.Context, sessionID string, st *domain.ScreenState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(screenStatePrefix+sessionID), st)
}

// DeleteScreenState removes the screen state for a session.
func (s *Store) DeleteScreenState(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete([]byte(screenStatePrefix + sessionID))
}
