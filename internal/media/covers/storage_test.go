package covers

import (
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	return s
}

func TestNewStorageEmptyBasePath(t *testing.T) {
	if _, err := NewStorage(""); err == nil {
		t.Error("expected error for empty base path")
	}
}

func TestStorageSaveGetRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	data := []byte("fake jpeg bytes")
	if err := s.Save("cmx-abc", data); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get("cmx-abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestStorageSaveValidation(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Save("", []byte("x")); err == nil {
		t.Error("expected error for empty ID")
	}
	if err := s.Save("cmx-abc", nil); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestStorageExistsAndDelete(t *testing.T) {
	s := newTestStorage(t)

	if s.Exists("cmx-abc") {
		t.Error("cover should not exist yet")
	}

	if err := s.Save("cmx-abc", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !s.Exists("cmx-abc") {
		t.Error("cover should exist after save")
	}

	if err := s.Delete("cmx-abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Exists("cmx-abc") {
		t.Error("cover should not exist after delete")
	}

	// Deleting a missing cover is not an error.
	if err := s.Delete("cmx-abc"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestStorageHash(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Save("cmx-abc", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}

	hash, err := s.Hash("cmx-abc")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}

	same, err := s.Hash("cmx-abc")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash != same {
		t.Error("hash should be deterministic")
	}
}

func TestStoragePath(t *testing.T) {
	s := newTestStorage(t)

	path := s.Path("cmx-abc")
	if !strings.HasSuffix(path, "cmx-abc.jpg") {
		t.Errorf("unexpected path: %s", path)
	}
}
