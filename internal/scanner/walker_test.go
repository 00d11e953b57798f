package scanner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func collectWalk(t *testing.T, root string) []ScannedFile {
	t.Helper()

	var files []ScannedFile
	for result := range NewWalker(testLogger()).Walk(context.Background(), root) {
		if result.Error != nil {
			t.Fatalf("walk error: %v", result.Error)
		}
		files = append(files, result.File)
	}
	return files
}

func TestWalkFindsComicArchives(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Saga v01.cbz", "a")
	writeFile(t, root, "indie/Bone.cbz", "b")
	writeFile(t, root, "indie/cover.jpg", "not a comic")
	writeFile(t, root, "readme.txt", "not a comic")

	files := collectWalk(t, root)

	if len(files) != 2 {
		t.Fatalf("found %d files, want 2", len(files))
	}
	names := map[string]bool{}
	for _, f := range files {
		names[f.RelPath] = true
		if f.Size == 0 {
			t.Errorf("%s: expected non-zero size", f.RelPath)
		}
		if f.ModTime.IsZero() {
			t.Errorf("%s: expected mod time", f.RelPath)
		}
	}
	if !names["Saga v01.cbz"] || !names[filepath.Join("indie", "Bone.cbz")] {
		t.Errorf("unexpected files: %v", names)
	}
}

func TestWalkSkipsHiddenEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".trash/Deleted.cbz", "x")
	writeFile(t, root, ".hidden.cbz", "x")
	writeFile(t, root, "Visible.cbz", "x")

	files := collectWalk(t, root)

	if len(files) != 1 || files[0].RelPath != "Visible.cbz" {
		t.Errorf("unexpected walk result: %+v", files)
	}
}

func TestWalkCancelledContext(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, root, string(rune('a'+i))+".cbz", "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Channel must close; no result after cancellation is guaranteed.
	for range NewWalker(testLogger()).Walk(ctx, root) {
	}
}
