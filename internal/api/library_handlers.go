package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/comixapp/comix-server/internal/domain"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryState",
		Method:      http.MethodGet,
		Path:        "/api/v1/library",
		Summary:     "Get library state",
		Description: "Returns the library directory and what the library is currently doing",
		Tags:        []string{"Library"},
	}, s.handleGetLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "syncLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/sync",
		Summary:     "Sync library",
		Description: "Starts a full filesystem scan of the library directory. Progress is reported on the event stream",
		Tags:        []string{"Library"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleSyncLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComics",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/delete",
		Summary:     "Permanently delete comics",
		Description: "Removes comics from the store, the search index, and cover storage. This cannot be undone",
		Tags:        []string{"Library"},
	}, s.handleDeleteComics)

	huma.Register(s.api, huma.Operation{
		OperationID: "addComics",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/add",
		Summary:     "Add comic files",
		Description: "Adds comic archives to the library, either copied in or linked in place. Per-file progress is reported on the event stream",
		Tags:        []string{"Library"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleAddComics)
}

// === DTOs ===

// LibraryResponse describes the library and its current activity.
type LibraryResponse struct {
	Path  string `json:"path" doc:"Library directory on disk"`
	State string `json:"state" doc:"Current activity: idle, syncing, or changing"`
}

// LibraryOutput wraps the library response for Huma.
type LibraryOutput struct {
	Body LibraryResponse
}

// SyncAcceptedResponse reports that a sync was requested.
type SyncAcceptedResponse struct {
	Accepted bool `json:"accepted" doc:"Always true; completion is reported on the event stream"`
}

// SyncOutput wraps the sync response for Huma.
type SyncOutput struct {
	Body SyncAcceptedResponse
}

// DeleteComicsRequest is the request body for permanent deletion.
type DeleteComicsRequest struct {
	ComicIDs []string `json:"comic_ids" validate:"required,min=1,dive,required" doc:"Comics to delete permanently"`
}

// DeleteComicsInput wraps the delete request for Huma.
type DeleteComicsInput struct {
	Body DeleteComicsRequest
}

// AddComicsRequest is the request body for adding comic files.
type AddComicsRequest struct {
	Paths         []string `json:"paths" validate:"required,min=1,dive,required" doc:"Absolute paths of archives to add"`
	Mode          string   `json:"mode" validate:"required,oneof=import link" doc:"import copies files into the library, link references them in place"`
	Replace       bool     `json:"replace" required:"false" doc:"Overwrite an existing file at the same library path"`
	SkipCorrupted bool     `json:"skip_corrupted" required:"false" doc:"Skip unreadable archives instead of reporting them as errors"`
}

// AddComicsInput wraps the add request for Huma.
type AddComicsInput struct {
	Body AddComicsRequest
}

// AddAcceptedResponse reports that an add batch was queued.
type AddAcceptedResponse struct {
	Accepted int `json:"accepted" doc:"Number of paths queued; per-file results are reported on the event stream"`
}

// AddOutput wraps the add response for Huma.
type AddOutput struct {
	Body AddAcceptedResponse
}

// === Handlers ===

func (s *Server) handleGetLibrary(_ context.Context, _ *struct{}) (*LibraryOutput, error) {
	return &LibraryOutput{Body: LibraryResponse{
		Path:  s.services.Library.Path(),
		State: string(s.services.Library.State()),
	}}, nil
}

func (s *Server) handleSyncLibrary(_ context.Context, _ *struct{}) (*SyncOutput, error) {
	s.list.Sync()
	return &SyncOutput{Body: SyncAcceptedResponse{Accepted: true}}, nil
}

func (s *Server) handleDeleteComics(ctx context.Context, input *DeleteComicsInput) (*EmptyOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	if err := s.list.PermanentRemove(ctx, input.Body.ComicIDs); err != nil {
		return nil, err
	}

	return &EmptyOutput{}, nil
}

func (s *Server) handleAddComics(_ context.Context, input *AddComicsInput) (*AddOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	var flags domain.AddFlag
	if input.Body.Replace {
		flags |= domain.AddFlagReplace
	}
	if input.Body.SkipCorrupted {
		flags |= domain.AddFlagSkipCorrupted
	}

	s.list.Add(input.Body.Paths, domain.AddMode(input.Body.Mode), flags)
	return &AddOutput{Body: AddAcceptedResponse{Accepted: len(input.Body.Paths)}}, nil
}
