package scanner

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/store"
)

// fakeStore is an in-memory ComicStore.
type fakeStore struct {
	mu     sync.Mutex
	comics map[string]*domain.Comic
	bulk   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{comics: make(map[string]*domain.Comic)}
}

func (f *fakeStore) ListAllComics(_ context.Context) ([]domain.Comic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Comic, 0, len(f.comics))
	for _, c := range f.comics {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) CreateComic(_ context.Context, c *domain.Comic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *c
	f.comics[c.ID] = &clone
	return nil
}

func (f *fakeStore) UpdateComic(_ context.Context, c *domain.Comic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comics[c.ID]; !ok {
		return store.ErrNotFound
	}
	clone := *c
	f.comics[c.ID] = &clone
	return nil
}

func (f *fakeStore) GetComic(_ context.Context, id string) (*domain.Comic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comics[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeStore) SetRemoved(_ context.Context, ids []string, removed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if c, ok := f.comics[id]; ok {
			c.Removed = removed
		}
	}
	return nil
}

func (f *fakeStore) SetBulkMode(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = enabled
}

func (f *fakeStore) byPath(path string) *domain.Comic {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.comics {
		if c.Path == path {
			clone := *c
			return &clone
		}
	}
	return nil
}

// fakeCovers stubs cover extraction.
type fakeCovers struct {
	calls int
}

func (f *fakeCovers) ExtractAndProcess(_ context.Context, _, comicID string) (string, string, error) {
	f.calls++
	return "/covers/" + comicID + ".jpg", "LEHV6nWB2yk8", nil
}

func writeCBZ(t *testing.T, root, rel string, pages int) string {
	t.Helper()

	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create cbz: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for i := 0; i < pages; i++ {
		w, err := zw.Create(string(rune('a'+i)) + ".jpg")
		if err != nil {
			t.Fatalf("create page: %v", err)
		}
		if _, err := w.Write([]byte("page data")); err != nil {
			t.Fatalf("write page: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close cbz: %v", err)
	}
	return path
}

func TestScanImportsNewComics(t *testing.T) {
	root := t.TempDir()
	writeCBZ(t, root, "Saga v01 [digital].cbz", 3)
	writeCBZ(t, root, "indie/Bone.cbz", 2)

	fs := newFakeStore()
	fc := &fakeCovers{}
	s := New(fs, fc, testLogger())

	summary, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if summary.Added != 2 || summary.Scanned != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if fc.calls != 2 {
		t.Errorf("cover extractions = %d, want 2", fc.calls)
	}

	c := fs.byPath(filepath.Join(root, "Saga v01 [digital].cbz"))
	if c == nil {
		t.Fatal("comic not created")
	}
	if c.Title != "Saga v01" {
		t.Errorf("title = %q, want %q", c.Title, "Saga v01")
	}
	if c.PageCount != 3 {
		t.Errorf("page count = %d, want 3", c.PageCount)
	}
	if c.CoverPath == "" || c.Blurhash == "" {
		t.Error("expected cover path and blurhash")
	}
	if c.Corrupted {
		t.Error("comic should not be corrupted")
	}
}

func TestScanFlagsCorruptedArchives(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "broken.cbz"), []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	fs := newFakeStore()
	s := New(fs, &fakeCovers{}, testLogger())

	summary, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.Added != 1 || summary.Corrupted != 1 {
		t.Errorf("summary = %+v", summary)
	}

	c := fs.byPath(filepath.Join(root, "broken.cbz"))
	if c == nil || !c.Corrupted {
		t.Errorf("expected corrupted comic record, got %+v", c)
	}
}

func TestScanMarksMissingComicsRemoved(t *testing.T) {
	root := t.TempDir()

	fs := newFakeStore()
	gone := existingComic("cmx-gone", filepath.Join(root, "gone.cbz"), 100)
	if err := fs.CreateComic(context.Background(), &gone); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	s := New(fs, &fakeCovers{}, testLogger())
	summary, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.Missing != 1 {
		t.Errorf("missing = %d, want 1", summary.Missing)
	}

	c, err := fs.GetComic(context.Background(), "cmx-gone")
	if err != nil {
		t.Fatalf("get comic: %v", err)
	}
	if !c.Removed {
		t.Error("missing comic should be marked removed")
	}
}

func TestScanRefreshesChangedArchives(t *testing.T) {
	root := t.TempDir()
	path := writeCBZ(t, root, "growing.cbz", 5)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	fs := newFakeStore()
	stale := existingComic("cmx-stale", path, info.Size()+999)
	stale.PageCount = 1
	if err := fs.CreateComic(context.Background(), &stale); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	s := New(fs, &fakeCovers{}, testLogger())
	summary, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.Updated != 1 || summary.Added != 0 {
		t.Errorf("summary = %+v", summary)
	}

	c, err := fs.GetComic(context.Background(), "cmx-stale")
	if err != nil {
		t.Fatalf("get comic: %v", err)
	}
	if c.PageCount != 5 {
		t.Errorf("page count = %d, want 5", c.PageCount)
	}
	if c.Size != info.Size() {
		t.Errorf("size = %d, want %d", c.Size, info.Size())
	}
}

func TestScanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeCBZ(t, root, "stable.cbz", 2)

	fs := newFakeStore()
	s := New(fs, &fakeCovers{}, testLogger())

	if _, err := s.Scan(context.Background(), root); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	summary, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if summary.Added != 0 || summary.Updated != 0 || summary.Missing != 0 {
		t.Errorf("second scan should be a no-op, got %+v", summary)
	}
}
