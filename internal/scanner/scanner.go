package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/id"
	"github.com/comixapp/comix-server/internal/normalize"
	"github.com/comixapp/comix-server/pkg/comicbox"
)

// ComicStore is the slice of the comics database the scanner needs.
type ComicStore interface {
	ListAllComics(ctx context.Context) ([]domain.Comic, error)
	CreateComic(ctx context.Context, c *domain.Comic) error
	UpdateComic(ctx context.Context, c *domain.Comic) error
	GetComic(ctx context.Context, id string) (*domain.Comic, error)
	SetRemoved(ctx context.Context, ids []string, removed bool) error
	SetBulkMode(enabled bool)
}

// CoverProcessor extracts and stores cover art for a comic archive.
type CoverProcessor interface {
	ExtractAndProcess(ctx context.Context, archivePath, comicID string) (coverPath, blurhash string, err error)
}

// Scanner reconciles the comics directory with the library database.
type Scanner struct {
	store  ComicStore
	covers CoverProcessor
	walker *Walker
	differ *Differ
	logger *slog.Logger
}

// New creates a new Scanner.
func New(store ComicStore, covers CoverProcessor, logger *slog.Logger) *Scanner {
	return &Scanner{
		store:  store,
		covers: covers,
		walker: NewWalker(logger),
		differ: NewDiffer(logger),
		logger: logger,
	}
}

// Scan walks rootPath and applies the resulting diff to the store:
// new archives become comics, changed archives are re-read, and comics
// whose archive disappeared are marked removed (never deleted).
func (s *Scanner) Scan(ctx context.Context, rootPath string) (*ScanSummary, error) {
	start := time.Now()

	// 1. Load the current library.
	existing, err := s.store.ListAllComics(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Walk the comics directory.
	var scanned []ScannedFile
	for result := range s.walker.Walk(ctx, rootPath) {
		if result.Error != nil {
			return nil, result.Error
		}
		scanned = append(scanned, result.File)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Diff against the store.
	diff, err := s.differ.ComputeDiff(ctx, scanned, existing)
	if err != nil {
		return nil, err
	}

	// 4. Apply the diff. Bulk mode holds back per-row change
	// notifications; callers emit one coarse notification after the scan.
	s.store.SetBulkMode(true)
	defer s.store.SetBulkMode(false)

	summary := &ScanSummary{Scanned: len(scanned)}

	for _, file := range diff.Added {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		comic, corrupted, err := s.importFile(ctx, file)
		if err != nil {
			return nil, err
		}
		if err := s.store.CreateComic(ctx, comic); err != nil {
			s.logger.Error("failed to create comic", "path", file.Path, "error", err)
			continue
		}
		summary.Added++
		if corrupted {
			summary.Corrupted++
		}
	}

	for _, update := range diff.Updated {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.refreshComic(ctx, update); err != nil {
			s.logger.Error("failed to refresh comic",
				"comic_id", update.ComicID, "error", err)
			continue
		}
		summary.Updated++
	}

	if len(diff.Missing) > 0 {
		if err := s.store.SetRemoved(ctx, diff.Missing, true); err != nil {
			return nil, err
		}
		summary.Missing = len(diff.Missing)
	}

	summary.Duration = time.Since(start)
	s.logger.Info("scan complete",
		"scanned", summary.Scanned,
		"added", summary.Added,
		"updated", summary.Updated,
		"missing", summary.Missing,
		"corrupted", summary.Corrupted,
		"duration", summary.Duration,
	)

	return summary, nil
}

// ImportFile inspects a single archive and adds it to the store. Used by
// the add flow for files dropped outside a full scan.
func (s *Scanner) ImportFile(ctx context.Context, file ScannedFile) (*domain.Comic, error) {
	comic, _, err := s.importFile(ctx, file)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateComic(ctx, comic); err != nil {
		return nil, err
	}
	return comic, nil
}

// importFile builds a comic record from an archive on disk. Unreadable
// archives still produce a record, flagged corrupted, so the library shows
// the file instead of silently dropping it.
func (s *Scanner) importFile(ctx context.Context, file ScannedFile) (*domain.Comic, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	comic := &domain.Comic{
		ID:        id.MustGenerate("cmx"),
		Title:     normalize.TitleFromFilename(file.Path),
		Path:      file.Path,
		Format:    comicbox.FormatForPath(file.Path).String(),
		Size:      file.Size,
		AddedAt:   now,
		UpdatedAt: now,
	}

	container, err := comicbox.Open(file.Path)
	if err != nil {
		s.logger.Warn("unreadable comic archive", "path", file.Path, "error", err)
		comic.Corrupted = true
		return comic, true, nil
	}
	comic.PageCount = container.PageCount()
	container.Close()

	if comic.PageCount == 0 {
		comic.Corrupted = true
		return comic, true, nil
	}

	coverPath, hash, err := s.covers.ExtractAndProcess(ctx, file.Path, comic.ID)
	if err != nil {
		s.logger.Warn("failed to extract cover", "path", file.Path, "error", err)
	} else {
		comic.CoverPath = coverPath
		comic.Blurhash = hash
	}

	return comic, false, nil
}

// RefreshFile re-reads the archive backing an existing comic and updates
// its record. Used when a tracked file is rewritten in place.
func (s *Scanner) RefreshFile(ctx context.Context, update FileUpdate) error {
	return s.refreshComic(ctx, update)
}

// refreshComic re-reads a changed archive and updates its record.
func (s *Scanner) refreshComic(ctx context.Context, update FileUpdate) error {
	comic, err := s.store.GetComic(ctx, update.ComicID)
	if err != nil {
		return err
	}

	comic.Size = update.File.Size
	comic.Corrupted = false

	container, err := comicbox.Open(update.File.Path)
	if err != nil {
		comic.Corrupted = true
		comic.PageCount = 0
	} else {
		comic.PageCount = container.PageCount()
		container.Close()

		coverPath, hash, err := s.covers.ExtractAndProcess(ctx, update.File.Path, comic.ID)
		if err != nil {
			s.logger.Warn("failed to refresh cover", "path", update.File.Path, "error", err)
		} else {
			comic.CoverPath = coverPath
			comic.Blurhash = hash
		}
	}

	comic.Touch()
	return s.store.UpdateComic(ctx, comic)
}
