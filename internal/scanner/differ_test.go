package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/comixapp/comix-server/internal/domain"
)

func existingComic(id, path string, size int64) domain.Comic {
	now := time.Now().UTC()
	return domain.Comic{
		ID:        id,
		Title:     "Comic " + id,
		Path:      path,
		Size:      size,
		AddedAt:   now,
		UpdatedAt: now,
	}
}

func TestComputeDiff(t *testing.T) {
	existing := []domain.Comic{
		existingComic("cmx-1", "/lib/a.cbz", 100),
		existingComic("cmx-2", "/lib/b.cbz", 200),
		existingComic("cmx-3", "/lib/gone.cbz", 300),
	}
	scanned := []ScannedFile{
		{Path: "/lib/a.cbz", Size: 100},
		{Path: "/lib/b.cbz", Size: 250}, // size changed
		{Path: "/lib/new.cbz", Size: 50},
	}

	diff, err := NewDiffer(testLogger()).ComputeDiff(context.Background(), scanned, existing)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}

	if len(diff.Added) != 1 || diff.Added[0].Path != "/lib/new.cbz" {
		t.Errorf("added = %+v", diff.Added)
	}
	if len(diff.Updated) != 1 || diff.Updated[0].ComicID != "cmx-2" {
		t.Errorf("updated = %+v", diff.Updated)
	}
	if len(diff.Missing) != 1 || diff.Missing[0] != "cmx-3" {
		t.Errorf("missing = %+v", diff.Missing)
	}
}

func TestComputeDiffAlreadyRemovedStaysRemoved(t *testing.T) {
	gone := existingComic("cmx-1", "/lib/gone.cbz", 100)
	gone.Removed = true

	diff, err := NewDiffer(testLogger()).ComputeDiff(context.Background(), nil, []domain.Comic{gone})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(diff.Missing) != 0 {
		t.Errorf("already-removed comic reported missing again: %+v", diff.Missing)
	}
}

func TestComputeDiffEmptyLibrary(t *testing.T) {
	scanned := []ScannedFile{{Path: "/lib/a.cbz", Size: 1}}

	diff, err := NewDiffer(testLogger()).ComputeDiff(context.Background(), scanned, nil)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(diff.Added) != 1 || len(diff.Updated) != 0 || len(diff.Missing) != 0 {
		t.Errorf("unexpected diff: %+v", diff)
	}
}
