// Package search provides full-text search over the comic library.
package search

import (
	"time"

	"github.com/comixapp/comix-server/internal/domain"
)

// ComicDocument is the searchable projection of a comic.
type ComicDocument struct {
	ID        string
	Title     string
	Format    string
	PageCount int
	Completed bool
	AddedAt   time.Time
}

// NewComicDocument builds a search document from a comic.
func NewComicDocument(c *domain.Comic) *ComicDocument {
	return &ComicDocument{
		ID:        c.ID,
		Title:     c.Title,
		Format:    c.Format,
		PageCount: c.PageCount,
		Completed: c.Completed,
		AddedAt:   c.AddedAt,
	}
}

// ToMap converts the document to a map so field names match the index
// mapping (lowercase).
func (d *ComicDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"format":     d.Format,
		"page_count": d.PageCount,
		"completed":  d.Completed,
		"added_at":   float64(d.AddedAt.UnixMilli()),
	}
}
