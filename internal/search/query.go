package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query  string // User's search text
	Format string // Restrict to a container format (empty = all)

	// Pagination
	Limit  int
	Offset int

	// Options
	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matching comic.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Format     string            `json:"format,omitempty"`
	PageCount  int               `json:"page_count,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query over the comic index.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchRequest := bleve.NewSearchRequestOptions(
		buildSearchQuery(params), params.Limit, params.Offset, false)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
	}

	searchRequest.Fields = []string{"title", "format", "page_count"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if f, ok := hit.Fields["format"].(string); ok {
			searchHit.Format = f
		}
		if pc, ok := hit.Fields["page_count"].(float64); ok {
			searchHit.PageCount = int(pc)
		}
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery assembles the Bleve query for the given params.
// Title text is matched three ways and the best score wins: exact match,
// prefix, and fuzzy (typo tolerance).
func buildSearchQuery(params SearchParams) query.Query {
	text := strings.TrimSpace(params.Query)

	var textQuery query.Query
	if text == "" {
		textQuery = bleve.NewMatchAllQuery()
	} else {
		match := bleve.NewMatchQuery(text)
		match.SetField("title")
		match.SetBoost(3.0)

		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(2.0)

		fuzzy := bleve.NewMatchQuery(text)
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)

		textQuery = bleve.NewDisjunctionQuery(match, prefix, fuzzy)
	}

	if params.Format == "" {
		return textQuery
	}

	formatQuery := bleve.NewTermQuery(params.Format)
	formatQuery.SetField("format")
	return bleve.NewConjunctionQuery(textQuery, formatQuery)
}
