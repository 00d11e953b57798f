package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/comixapp/comix-server/internal/domain"
)

func (s *Server) registerScreenStateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getScreenState",
		Method:      http.MethodGet,
		Path:        "/api/v1/screen-state/{session}",
		Summary:     "Get screen state",
		Description: "Returns the saved list-screen state for a client session",
		Tags:        []string{"ScreenState"},
	}, s.handleGetScreenState)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveScreenState",
		Method:      http.MethodPut,
		Path:        "/api/v1/screen-state/{session}",
		Summary:     "Save screen state",
		Description: "Saves the list-screen state for a client session so it survives restarts",
		Tags:        []string{"ScreenState"},
	}, s.handleSaveScreenState)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteScreenState",
		Method:      http.MethodDelete,
		Path:        "/api/v1/screen-state/{session}",
		Summary:     "Delete screen state",
		Description: "Discards the saved list-screen state for a client session",
		Tags:        []string{"ScreenState"},
	}, s.handleDeleteScreenState)
}

// === DTOs ===

// ScreenStateResponse is the saved list-screen state.
type ScreenStateResponse struct {
	SearchText  string `json:"search_text,omitempty" doc:"Search text the screen was showing"`
	LastPageKey *int   `json:"last_page_key,omitempty" doc:"Key of the last visible page"`
}

// ScreenStateInput contains parameters for reading screen state.
type ScreenStateInput struct {
	Session string `path:"session" doc:"Client session ID"`
}

// ScreenStateOutput wraps the screen state for Huma.
type ScreenStateOutput struct {
	Body ScreenStateResponse
}

// SaveScreenStateRequest is the request body for saving screen state.
type SaveScreenStateRequest struct {
	SearchText  string `json:"search_text" required:"false" validate:"max=512" doc:"Search text to save"`
	LastPageKey *int   `json:"last_page_key,omitempty" validate:"omitempty,gte=0" doc:"Page key to save, absent to clear"`
}

// SaveScreenStateInput wraps the save request for Huma.
type SaveScreenStateInput struct {
	Session string `path:"session" doc:"Client session ID"`
	Body    SaveScreenStateRequest
}

// === Handlers ===

func (s *Server) handleGetScreenState(ctx context.Context, input *ScreenStateInput) (*ScreenStateOutput, error) {
	st, err := s.settings.GetScreenState(ctx, input.Session)
	if err != nil {
		return nil, err
	}

	return &ScreenStateOutput{Body: ScreenStateResponse{
		SearchText:  st.SearchText,
		LastPageKey: st.LastPageKey,
	}}, nil
}

func (s *Server) handleSaveScreenState(ctx context.Context, input *SaveScreenStateInput) (*ScreenStateOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	st := &domain.ScreenState{
		SearchText:  input.Body.SearchText,
		LastPageKey: input.Body.LastPageKey,
	}
	if err := s.settings.SaveScreenState(ctx, input.Session, st); err != nil {
		return nil, err
	}

	return &ScreenStateOutput{Body: ScreenStateResponse{
		SearchText:  st.SearchText,
		LastPageKey: st.LastPageKey,
	}}, nil
}

func (s *Server) handleDeleteScreenState(ctx context.Context, input *ScreenStateInput) (*EmptyOutput, error) {
	if err := s.settings.DeleteScreenState(ctx, input.Session); err != nil {
		return nil, err
	}

	return &EmptyOutput{}, nil
}
