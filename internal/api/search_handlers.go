package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/comixapp/comix-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchComics",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search comics",
		Description: "Full-text search over comic titles",
		Tags:        []string{"Search"},
	}, s.handleSearchComics)
}

// === DTOs ===

// SearchInput contains search query parameters.
type SearchInput struct {
	Query     string `query:"q" required:"true" minLength:"1" doc:"Search text"`
	Format    string `query:"format" doc:"Restrict to a container format"`
	Limit     int    `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum hits to return"`
	Offset    int    `query:"offset" minimum:"0" doc:"Hits to skip"`
	Highlight bool   `query:"highlight" default:"true" doc:"Include match highlighting"`
}

// SearchHitResponse is a single matching comic.
type SearchHitResponse struct {
	ID         string            `json:"id" doc:"Comic ID"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Title      string            `json:"title" doc:"Comic title"`
	Format     string            `json:"format,omitempty" doc:"Container format"`
	PageCount  int               `json:"page_count,omitempty" doc:"Number of pages"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted match fragments by field"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string              `json:"query" doc:"The search text as interpreted"`
	Total  uint64              `json:"total" doc:"Total matching comics"`
	TookMs int64               `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResponse `json:"hits" doc:"Matching comics"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearchComics(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Format = input.Format
	params.Highlight = input.Highlight
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}

	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResponse{
			ID:         h.ID,
			Score:      h.Score,
			Title:      h.Title,
			Format:     h.Format,
			PageCount:  h.PageCount,
			Highlights: h.Highlights,
		}
	}

	return &SearchOutput{Body: SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}}, nil
}
