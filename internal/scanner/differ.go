package scanner

import (
	"context"
	"log/slog"

	"github.com/comixapp/comix-server/internal/domain"
)

type Differ struct {
	logger *slog.Logger
}

func NewDiffer(logger *slog.Logger) *Differ {
	return &Differ{
		logger: logger,
	}
}

// ComputeDiff compares scanned archives against existing comics to determine
// what changed. Matching is by archive path; a matched comic counts as
// updated when its file size changed on disk.
func (d *Differ) ComputeDiff(ctx context.Context, scanned []ScannedFile, existing []domain.Comic) (*ScanDiff, error) {
	diff := &ScanDiff{
		Added:   make([]ScannedFile, 0),
		Updated: make([]FileUpdate, 0),
		Missing: make([]string, 0),
	}

	existingByPath := make(map[string]*domain.Comic, len(existing))
	matched := make(map[string]bool, len(existing))
	for i := range existing {
		existingByPath[existing[i].Path] = &existing[i]
	}

	for _, file := range scanned {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		comic, ok := existingByPath[file.Path]
		if !ok {
			diff.Added = append(diff.Added, file)
			continue
		}

		matched[comic.ID] = true
		if comic.Size != file.Size {
			diff.Updated = append(diff.Updated, FileUpdate{ComicID: comic.ID, File: file})
		}
	}

	// Comics whose archive disappeared. Already-removed ones stay as they
	// are so a scan never flips them back and forth.
	for i := range existing {
		c := &existing[i]
		if !matched[c.ID] && !c.Removed {
			diff.Missing = append(diff.Missing, c.ID)
		}
	}

	d.logger.Info("diff computed",
		"added", len(diff.Added),
		"updated", len(diff.Updated),
		"missing", len(diff.Missing),
	)

	return diff, nil
}
