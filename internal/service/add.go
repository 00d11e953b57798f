package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/sse"
	"github.com/comixapp/comix-server/pkg/comicbox"
)

// AddResult is the outcome of adding one archive.
type AddResult struct {
	Path  string
	Comic *domain.Comic
	Err   error
	// Skipped is set when a corrupted archive was passed over because
	// the caller asked for that instead of an error.
	Skipped bool
}

const addWorkers = 2

// AddService brings external archive files into the library, either by
// copying them into the comics directory or by linking them in place.
// Imports are paced so a large batch does not starve the rest of the
// server.
type AddService struct {
	library    *LibraryService
	sseManager *sse.Manager
	logger     *slog.Logger

	// limiter paces archive imports across all concurrent add batches.
	limiter *rate.Limiter
}

// NewAddService creates a new add service.
func NewAddService(library *LibraryService, sseManager *sse.Manager, logger *slog.Logger) *AddService {
	return &AddService{
		library:    library,
		sseManager: sseManager,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(20), addWorkers),
	}
}

// Add imports the given archive paths and streams one result per path.
// The returned channel closes once every path has been handled or ctx is
// cancelled. An empty path list yields an immediately closed channel.
func (s *AddService) Add(ctx context.Context, paths []string, mode domain.AddMode, flags domain.AddFlag) <-chan AddResult {
	results := make(chan AddResult, len(paths))
	if len(paths) == 0 {
		close(results)
		return results
	}

	total := len(paths)
	jobs := make(chan string)

	var (
		mu        sync.Mutex
		completed int
		imported  int
		failed    int
	)

	var wg sync.WaitGroup
	for i := 0; i < addWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				res := s.addOne(ctx, path, mode, flags)

				mu.Lock()
				completed++
				progress := sse.AddProgressEventData{
					Path:      res.Path,
					Completed: completed,
					Total:     total,
				}
				if res.Comic != nil {
					progress.ComicID = res.Comic.ID
					imported++
				}
				if res.Err != nil {
					progress.Error = res.Err.Error()
					failed++
				}
				mu.Unlock()

				s.sseManager.Emit(sse.NewAddProgressEvent(progress))

				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
	feed:
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()

		mu.Lock()
		s.sseManager.Emit(sse.NewAddCompleteEvent(imported, failed))
		mu.Unlock()
		close(results)
	}()

	return results
}

// addOne brings one archive into the library.
func (s *AddService) addOne(ctx context.Context, path string, mode domain.AddMode, flags domain.AddFlag) AddResult {
	if err := s.limiter.Wait(ctx); err != nil {
		return AddResult{Path: path, Err: err}
	}

	// 1. Reject unreadable archives up front so a copy never happens
	// for a file that can't be imported.
	if err := probeArchive(path); err != nil {
		var corrupted *comicbox.CorruptedArchiveError
		if errors.As(err, &corrupted) && flags.Has(domain.AddFlagSkipCorrupted) {
			s.logger.Info("skipped corrupted archive", "path", path)
			return AddResult{Path: path, Skipped: true}
		}
		return AddResult{Path: path, Err: err}
	}

	// 2. Place the file according to the mode.
	target := path
	if mode == domain.AddModeImport {
		var err error
		target, err = s.copyIntoLibrary(path, flags)
		if err != nil {
			return AddResult{Path: path, Err: err}
		}
	}

	// 3. Import the placed archive. A tracked path is refreshed rather
	// than duplicated, which is what replace mode wants.
	comic, err := s.library.ImportArchive(ctx, target)
	if err != nil {
		return AddResult{Path: path, Err: err}
	}

	return AddResult{Path: path, Comic: comic}
}

// probeArchive opens and closes the archive to verify it is readable and
// has at least one page.
func probeArchive(path string) error {
	c, err := comicbox.Open(path)
	if err != nil {
		return err
	}
	defer c.Close()

	if c.PageCount() == 0 {
		return &comicbox.CorruptedArchiveError{Path: path, Reason: "no pages"}
	}
	return nil
}

// copyIntoLibrary copies the archive into the comics directory, refusing
// to overwrite an existing file unless the replace flag is set.
func (s *AddService) copyIntoLibrary(path string, flags domain.AddFlag) (string, error) {
	target := filepath.Join(s.library.Path(), filepath.Base(path))
	if target == path {
		return path, nil
	}

	if _, err := os.Stat(target); err == nil && !flags.Has(domain.AddFlagReplace) {
		return "", fmt.Errorf("%s already exists in the library", filepath.Base(path))
	}

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.library.Path(), ".add-*")
	if err != nil {
		return "", err
	}
	tmpName := dst.Name()

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return target, nil
}
