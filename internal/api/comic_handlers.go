package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/comixapp/comix-server/internal/domain"
)

func (s *Server) registerComicRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComics",
		Method:      http.MethodGet,
		Path:        "/api/v1/comics",
		Summary:     "List comics",
		Description: "Returns a window of the comic list under the active query",
		Tags:        []string{"Comics"},
	}, s.handleListComics)

	huma.Register(s.api, huma.Operation{
		OperationID: "getComic",
		Method:      http.MethodGet,
		Path:        "/api/v1/comics/{id}",
		Summary:     "Get comic",
		Description: "Returns a comic by ID",
		Tags:        []string{"Comics"},
	}, s.handleGetComic)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameComic",
		Method:      http.MethodPost,
		Path:        "/api/v1/comics/{id}/rename",
		Summary:     "Rename comic",
		Description: "Changes the display title of a comic",
		Tags:        []string{"Comics"},
	}, s.handleRenameComic)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleComicCompleted",
		Method:      http.MethodPost,
		Path:        "/api/v1/comics/{id}/toggle-completed",
		Summary:     "Toggle completed mark",
		Description: "Flips the completed mark on a comic",
		Tags:        []string{"Comics"},
	}, s.handleToggleCompleted)

	huma.Register(s.api, huma.Operation{
		OperationID: "setComicsCompleted",
		Method:      http.MethodPut,
		Path:        "/api/v1/comics/completed",
		Summary:     "Set completed mark",
		Description: "Sets the completed mark on a batch of comics",
		Tags:        []string{"Comics"},
	}, s.handleSetCompleted)

	huma.Register(s.api, huma.Operation{
		OperationID: "setComicsRemoved",
		Method:      http.MethodPut,
		Path:        "/api/v1/comics/removed",
		Summary:     "Set removed mark",
		Description: "Moves comics in or out of the removed set. Removal is undoable until the comics are permanently deleted",
		Tags:        []string{"Comics"},
	}, s.handleSetRemoved)

	huma.Register(s.api, huma.Operation{
		OperationID: "markComicOpened",
		Method:      http.MethodPost,
		Path:        "/api/v1/comics/{id}/opened",
		Summary:     "Mark comic opened",
		Description: "Records that a comic was opened for reading and stores the page position",
		Tags:        []string{"Comics"},
	}, s.handleMarkOpened)
}

// === DTOs ===

// ComicResponse contains comic data in API responses.
type ComicResponse struct {
	ID        string     `json:"id" doc:"Comic ID"`
	Title     string     `json:"title" doc:"Display title"`
	Path      string     `json:"path" doc:"Archive path on disk"`
	Format    string     `json:"format" doc:"Container format (cbz, cbr, cb7, pdf)"`
	Size      int64      `json:"size" doc:"Archive size in bytes"`
	PageCount int        `json:"page_count" doc:"Number of pages"`
	Blurhash  string     `json:"blurhash,omitempty" doc:"Cover blurhash placeholder"`
	Completed bool       `json:"completed" doc:"Completed mark"`
	Removed   bool       `json:"removed" doc:"Removed mark"`
	Corrupted bool       `json:"corrupted" doc:"Whether the archive failed to open"`
	Position  int        `json:"position" doc:"Last read page index, zero-based"`
	AddedAt   time.Time  `json:"added_at" doc:"When the comic entered the library"`
	OpenedAt  *time.Time `json:"opened_at,omitempty" doc:"When the comic was last opened"`
	UpdatedAt time.Time  `json:"updated_at" doc:"Last modification time"`
}

// ListComicsInput contains pagination parameters for listing comics.
type ListComicsInput struct {
	Offset int `query:"offset" minimum:"0" doc:"Window start offset"`
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Window size"`
}

// ListComicsResponse contains a window of the comic list.
type ListComicsResponse struct {
	Comics []ComicResponse `json:"comics" doc:"Comics in the window"`
	Offset int             `json:"offset" doc:"Window start offset"`
	Total  int64           `json:"total" doc:"Total comics matching the active query"`
}

// ListComicsOutput wraps the list response for Huma.
type ListComicsOutput struct {
	Body ListComicsResponse
}

// GetComicInput contains parameters for getting a comic.
type GetComicInput struct {
	ID string `path:"id" doc:"Comic ID"`
}

// ComicOutput wraps a single comic response for Huma.
type ComicOutput struct {
	Body ComicResponse
}

// RenameComicRequest is the request body for renaming a comic.
type RenameComicRequest struct {
	Title string `json:"title" validate:"required,min=1,max=512" doc:"New display title"`
}

// RenameComicInput wraps the rename request for Huma.
type RenameComicInput struct {
	ID   string `path:"id" doc:"Comic ID"`
	Body RenameComicRequest
}

// SetCompletedRequest is the request body for batch completed updates.
type SetCompletedRequest struct {
	ComicIDs  []string `json:"comic_ids" validate:"required,min=1,dive,required" doc:"Comics to update"`
	Completed bool     `json:"completed" doc:"Target completed state"`
}

// SetCompletedInput wraps the completed request for Huma.
type SetCompletedInput struct {
	Body SetCompletedRequest
}

// SetRemovedRequest is the request body for batch removed updates.
type SetRemovedRequest struct {
	ComicIDs []string `json:"comic_ids" validate:"required,min=1,dive,required" doc:"Comics to update"`
	Removed  bool     `json:"removed" doc:"Target removed state"`
}

// SetRemovedInput wraps the removed request for Huma.
type SetRemovedInput struct {
	Body SetRemovedRequest
}

// MarkOpenedRequest is the request body for recording an open.
type MarkOpenedRequest struct {
	Position int `json:"position" validate:"gte=0" doc:"Page index the reader is on, zero-based"`
}

// MarkOpenedInput wraps the opened request for Huma.
type MarkOpenedInput struct {
	ID   string `path:"id" doc:"Comic ID"`
	Body MarkOpenedRequest
}

// EmptyOutput is the response for operations with nothing to return.
type EmptyOutput struct {
	Body struct{}
}

// === Handlers ===

func comicToResponse(c *domain.Comic) ComicResponse {
	return ComicResponse{
		ID:        c.ID,
		Title:     c.Title,
		Path:      c.Path,
		Format:    c.Format,
		Size:      c.Size,
		PageCount: c.PageCount,
		Blurhash:  c.Blurhash,
		Completed: c.Completed,
		Removed:   c.Removed,
		Corrupted: c.Corrupted,
		Position:  c.Position,
		AddedAt:   c.AddedAt,
		OpenedAt:  c.OpenedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *Server) handleListComics(ctx context.Context, input *ListComicsInput) (*ListComicsOutput, error) {
	query := s.list.QueryParams()

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	total, err := s.services.ComicList.Total(ctx, query)
	if err != nil {
		return nil, err
	}

	comics, err := s.services.ComicList.Window(ctx, input.Offset, limit, query)
	if err != nil {
		return nil, err
	}

	resp := make([]ComicResponse, len(comics))
	for i := range comics {
		resp[i] = comicToResponse(&comics[i])
	}

	return &ListComicsOutput{Body: ListComicsResponse{
		Comics: resp,
		Offset: input.Offset,
		Total:  total,
	}}, nil
}

func (s *Server) handleGetComic(ctx context.Context, input *GetComicInput) (*ComicOutput, error) {
	comic, err := s.services.ComicList.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ComicOutput{Body: comicToResponse(comic)}, nil
}

func (s *Server) handleRenameComic(ctx context.Context, input *RenameComicInput) (*ComicOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	comic, err := s.list.Rename(ctx, input.ID, input.Body.Title)
	if err != nil {
		return nil, err
	}

	return &ComicOutput{Body: comicToResponse(comic)}, nil
}

func (s *Server) handleToggleCompleted(ctx context.Context, input *GetComicInput) (*ComicOutput, error) {
	comic, err := s.list.ToggleCompletedMark(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ComicOutput{Body: comicToResponse(comic)}, nil
}

func (s *Server) handleSetCompleted(ctx context.Context, input *SetCompletedInput) (*EmptyOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	if err := s.list.SetCompletedMark(ctx, input.Body.ComicIDs, input.Body.Completed); err != nil {
		return nil, err
	}

	return &EmptyOutput{}, nil
}

func (s *Server) handleSetRemoved(ctx context.Context, input *SetRemovedInput) (*EmptyOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	if err := s.list.SetRemovedState(ctx, input.Body.ComicIDs, input.Body.Removed); err != nil {
		return nil, err
	}

	return &EmptyOutput{}, nil
}

func (s *Server) handleMarkOpened(ctx context.Context, input *MarkOpenedInput) (*EmptyOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	if err := s.services.ComicList.MarkOpened(ctx, input.ID, input.Body.Position); err != nil {
		return nil, err
	}

	return &EmptyOutput{}, nil
}
