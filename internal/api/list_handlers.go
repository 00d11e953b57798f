package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/comixapp/comix-server/internal/comiclist"
	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/errors"
)

func (s *Server) registerListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getListState",
		Method:      http.MethodGet,
		Path:        "/api/v1/list/state",
		Summary:     "Get list state",
		Description: "Returns the current loading state and page window of the comic list",
		Tags:        []string{"List"},
	}, s.handleGetListState)

	huma.Register(s.api, huma.Operation{
		OperationID: "loadList",
		Method:      http.MethodPost,
		Path:        "/api/v1/list/load",
		Summary:     "Load list",
		Description: "Starts paged loading of the comic list. A request identical to the one already in flight is ignored",
		Tags:        []string{"List"},
	}, s.handleLoadList)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelListLoad",
		Method:      http.MethodPost,
		Path:        "/api/v1/list/cancel",
		Summary:     "Cancel list load",
		Description: "Stops the in-flight list load, if any",
		Tags:        []string{"List"},
	}, s.handleCancelListLoad)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListQuery",
		Method:      http.MethodGet,
		Path:        "/api/v1/list/query",
		Summary:     "Get list query",
		Description: "Returns the active query parameters of the comic list",
		Tags:        []string{"List"},
	}, s.handleGetListQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "setListQuery",
		Method:      http.MethodPut,
		Path:        "/api/v1/list/query",
		Summary:     "Set list query",
		Description: "Replaces the active query parameters. An unchanged query is a no-op",
		Tags:        []string{"List"},
	}, s.handleSetListQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "setListSort",
		Method:      http.MethodPut,
		Path:        "/api/v1/list/sort",
		Summary:     "Set list sort",
		Description: "Changes the list ordering. Selecting the already-active sort is a no-op",
		Tags:        []string{"List"},
	}, s.handleSetListSort)

	huma.Register(s.api, huma.Operation{
		OperationID: "setListSearch",
		Method:      http.MethodPut,
		Path:        "/api/v1/list/search",
		Summary:     "Set list search text",
		Description: "Changes the title filter of the comic list",
		Tags:        []string{"List"},
	}, s.handleSetListSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "setListFilter",
		Method:      http.MethodPut,
		Path:        "/api/v1/list/filter",
		Summary:     "Set list filter",
		Description: "Sets the active filter for a filter group",
		Tags:        []string{"List"},
	}, s.handleSetListFilter)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearListFilter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/list/filter/{group}",
		Summary:     "Clear list filter",
		Description: "Clears the active filter for a filter group",
		Tags:        []string{"List"},
	}, s.handleClearListFilter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListType",
		Method:      http.MethodGet,
		Path:        "/api/v1/list/type",
		Summary:     "Get list presentation type",
		Description: "Returns whether the list is shown as a grid or a flat list",
		Tags:        []string{"List"},
	}, s.handleGetListType)

	huma.Register(s.api, huma.Operation{
		OperationID: "setListType",
		Method:      http.MethodPut,
		Path:        "/api/v1/list/type",
		Summary:     "Set list presentation type",
		Description: "Switches the list between grid and flat presentation",
		Tags:        []string{"List"},
	}, s.handleSetListType)
}

// === DTOs ===

// ListStateResponse describes the comic list's loading state.
type ListStateResponse struct {
	Kind         string          `json:"kind" doc:"Loading state: idle, loading, or loaded"`
	Comics       []ComicResponse `json:"comics,omitempty" doc:"Comics in the loaded window"`
	Position     int             `json:"position" doc:"Window start offset"`
	Total        int64           `json:"total" doc:"Total comics matching the active query"`
	LastKey      *int            `json:"last_key,omitempty" doc:"Key of the last loaded page, absent until a page is loaded"`
	LibraryState string          `json:"library_state" doc:"What the library is doing: idle, syncing, or changing"`
}

// ListStateOutput wraps the list state for Huma.
type ListStateOutput struct {
	Body ListStateResponse
}

// LoadListRequest is the request body for starting a list load.
type LoadListRequest struct {
	PageSize   int `json:"page_size" required:"false" validate:"gte=0,lte=500" doc:"Window size, 0 for the default"`
	InitialKey int `json:"initial_key" required:"false" validate:"gte=0" doc:"Page key to restore, 0 to start at the top"`
}

// LoadListInput wraps the load request for Huma.
type LoadListInput struct {
	Body LoadListRequest
}

// LoadListResponse reports whether a new load was started.
type LoadListResponse struct {
	Started bool `json:"started" doc:"False when the identical load was already running"`
}

// LoadListOutput wraps the load response for Huma.
type LoadListOutput struct {
	Body LoadListResponse
}

// QueryFilterDTO is one active filter within a filter group.
type QueryFilterDTO struct {
	Group string `json:"group" validate:"required,oneof=completion removed file" doc:"Filter group ID"`
	Kind  string `json:"kind" validate:"required,oneof=completed not_completed removed not_removed corrupted not_corrupted" doc:"Filter kind"`
}

// QueryParamsResponse contains the active list query.
type QueryParamsResponse struct {
	Title   string           `json:"title" doc:"Title search text"`
	Sort    string           `json:"sort" doc:"Active sort order"`
	Filters []QueryFilterDTO `json:"filters" doc:"Active filters, one per group"`
}

// QueryParamsOutput wraps the query response for Huma.
type QueryParamsOutput struct {
	Body QueryParamsResponse
}

// SetQueryRequest is the request body for replacing the list query.
type SetQueryRequest struct {
	Title   string           `json:"title" required:"false" validate:"max=512" doc:"Title search text"`
	Sort    string           `json:"sort" validate:"required,oneof=name_asc name_desc added_asc added_desc opened_asc opened_desc" doc:"Sort order"`
	Filters []QueryFilterDTO `json:"filters,omitempty" validate:"dive" doc:"Filters to activate, one per group"`
}

// SetQueryInput wraps the query request for Huma.
type SetQueryInput struct {
	Body SetQueryRequest
}

// QueryChangeResponse reports what a query update changed.
type QueryChangeResponse struct {
	Changed        bool `json:"changed" doc:"Whether the query differs from the previous one"`
	FiltersChanged bool `json:"filters_changed" doc:"Whether the filter set changed"`
}

// QueryChangeOutput wraps the change response for Huma.
type QueryChangeOutput struct {
	Body QueryChangeResponse
}

// SetSortRequest is the request body for changing the sort order.
type SetSortRequest struct {
	Sort string `json:"sort" validate:"required,oneof=name_asc name_desc added_asc added_desc opened_asc opened_desc" doc:"Sort order"`
}

// SetSortInput wraps the sort request for Huma.
type SetSortInput struct {
	Body SetSortRequest
}

// SetSearchRequest is the request body for changing the search text.
type SetSearchRequest struct {
	Title string `json:"title" required:"false" validate:"max=512" doc:"Title search text, empty to clear"`
}

// SetSearchInput wraps the search request for Huma.
type SetSearchInput struct {
	Body SetSearchRequest
}

// SetFilterInput wraps a filter request for Huma.
type SetFilterInput struct {
	Body QueryFilterDTO
}

// ClearFilterInput contains parameters for clearing a filter group.
type ClearFilterInput struct {
	Group string `path:"group" doc:"Filter group ID"`
}

// ListTypeResponse contains the list presentation type.
type ListTypeResponse struct {
	Type string `json:"type" doc:"Presentation type: grid or list"`
}

// ListTypeOutput wraps the type response for Huma.
type ListTypeOutput struct {
	Body ListTypeResponse
}

// SetListTypeRequest is the request body for switching presentation type.
type SetListTypeRequest struct {
	Type string `json:"type" validate:"required,oneof=grid list" doc:"Presentation type"`
}

// SetListTypeInput wraps the type request for Huma.
type SetListTypeInput struct {
	Body SetListTypeRequest
}

// === Handlers ===

func listStateToResponse(st comiclist.ListState, libraryState domain.LibraryState) ListStateResponse {
	resp := ListStateResponse{
		Kind:         string(st.Kind),
		LibraryState: string(libraryState),
	}

	if st.Window != nil {
		resp.Comics = make([]ComicResponse, len(st.Window.Items))
		for i := range st.Window.Items {
			resp.Comics[i] = comicToResponse(&st.Window.Items[i])
		}
		resp.Position = st.Window.Position
		resp.Total = st.Window.Total
	}

	if key, ok := st.LastKey(); ok {
		resp.LastKey = &key
	}

	return resp
}

func queryToResponse(q domain.QueryParams) QueryParamsResponse {
	resp := QueryParamsResponse{
		Title:   q.Title,
		Sort:    string(q.Sort),
		Filters: make([]QueryFilterDTO, 0, len(q.Filters)),
	}
	for _, f := range q.Filters {
		resp.Filters = append(resp.Filters, QueryFilterDTO{Group: f.Group, Kind: string(f.Kind)})
	}
	return resp
}

func queryFromRequest(title, sort string, filters []QueryFilterDTO) domain.QueryParams {
	q := domain.QueryParams{
		Title:   title,
		Sort:    domain.Sort(sort),
		Filters: make(map[string]domain.Filter, len(filters)),
	}
	for _, f := range filters {
		q.Filters[f.Group] = domain.Filter{Group: f.Group, Kind: domain.FilterKind(f.Kind)}
	}
	return q
}

func (s *Server) handleGetListState(_ context.Context, _ *struct{}) (*ListStateOutput, error) {
	return &ListStateOutput{
		Body: listStateToResponse(s.list.State(), s.list.LibraryState()),
	}, nil
}

func (s *Server) handleLoadList(_ context.Context, input *LoadListInput) (*LoadListOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	started := s.list.LoadList(input.Body.PageSize, input.Body.InitialKey)
	return &LoadListOutput{Body: LoadListResponse{Started: started}}, nil
}

func (s *Server) handleCancelListLoad(_ context.Context, _ *struct{}) (*EmptyOutput, error) {
	s.list.CancelLoad()
	return &EmptyOutput{}, nil
}

func (s *Server) handleGetListQuery(_ context.Context, _ *struct{}) (*QueryParamsOutput, error) {
	return &QueryParamsOutput{Body: queryToResponse(s.list.QueryParams())}, nil
}

func (s *Server) handleSetListQuery(ctx context.Context, input *SetQueryInput) (*QueryChangeOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	q := queryFromRequest(input.Body.Title, input.Body.Sort, input.Body.Filters)
	change, err := s.list.SetQueryParams(ctx, q)
	if err != nil {
		return nil, err
	}

	return &QueryChangeOutput{Body: QueryChangeResponse{
		Changed:        change.Changed,
		FiltersChanged: change.FiltersChanged,
	}}, nil
}

func (s *Server) handleSetListSort(ctx context.Context, input *SetSortInput) (*QueryChangeOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	sort := domain.Sort(input.Body.Sort)
	if !sort.Valid() {
		return nil, errors.Validationf("unknown sort order %q", input.Body.Sort)
	}

	change, err := s.list.OnSortSelected(ctx, sort)
	if err != nil {
		return nil, err
	}

	return &QueryChangeOutput{Body: QueryChangeResponse{
		Changed:        change.Changed,
		FiltersChanged: change.FiltersChanged,
	}}, nil
}

func (s *Server) handleSetListSearch(ctx context.Context, input *SetSearchInput) (*QueryChangeOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	change, err := s.list.OnSearchChanged(ctx, input.Body.Title)
	if err != nil {
		return nil, err
	}

	return &QueryChangeOutput{Body: QueryChangeResponse{
		Changed:        change.Changed,
		FiltersChanged: change.FiltersChanged,
	}}, nil
}

func (s *Server) handleSetListFilter(ctx context.Context, input *SetFilterInput) (*QueryChangeOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	f := domain.Filter{Group: input.Body.Group, Kind: domain.FilterKind(input.Body.Kind)}
	change, err := s.list.SetFilter(ctx, f)
	if err != nil {
		return nil, err
	}

	return &QueryChangeOutput{Body: QueryChangeResponse{
		Changed:        change.Changed,
		FiltersChanged: change.FiltersChanged,
	}}, nil
}

func (s *Server) handleClearListFilter(ctx context.Context, input *ClearFilterInput) (*QueryChangeOutput, error) {
	change, err := s.list.ClearFilter(ctx, input.Group)
	if err != nil {
		return nil, err
	}

	return &QueryChangeOutput{Body: QueryChangeResponse{
		Changed:        change.Changed,
		FiltersChanged: change.FiltersChanged,
	}}, nil
}

func (s *Server) handleGetListType(ctx context.Context, _ *struct{}) (*ListTypeOutput, error) {
	lt, err := s.list.ListType(ctx)
	if err != nil {
		return nil, err
	}

	return &ListTypeOutput{Body: ListTypeResponse{Type: string(lt)}}, nil
}

func (s *Server) handleSetListType(ctx context.Context, input *SetListTypeInput) (*ListTypeOutput, error) {
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	lt := domain.ListType(input.Body.Type)
	if err := s.list.SetListType(ctx, lt); err != nil {
		return nil, err
	}

	return &ListTypeOutput{Body: ListTypeResponse{Type: string(lt)}}, nil
}
