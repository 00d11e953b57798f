package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/store"
)

func TestCreateAndGetComic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := mustCreateComic(t, s, "Saga v01")

	got, err := s.GetComic(ctx, want.ID)
	if err != nil {
		t.Fatalf("get comic: %v", err)
	}
	if got.Title != want.Title {
		t.Errorf("title = %q, want %q", got.Title, want.Title)
	}
	if got.Path != want.Path {
		t.Errorf("path = %q, want %q", got.Path, want.Path)
	}
	if got.PageCount != want.PageCount {
		t.Errorf("page count = %d, want %d", got.PageCount, want.PageCount)
	}
	if got.OpenedAt != nil {
		t.Errorf("expected nil opened_at, got %v", got.OpenedAt)
	}
}

func TestCreateComicDuplicatePath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustCreateComic(t, s, "Saga v01")

	dup := newTestComic(t, "Saga v01 copy")
	dup.Path = first.Path
	err := s.CreateComic(ctx, dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetComicNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetComic(context.Background(), "cmx-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetComicByPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := mustCreateComic(t, s, "Paper Girls")

	got, err := s.GetComicByPath(ctx, want.Path)
	if err != nil {
		t.Fatalf("get by path: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("id = %q, want %q", got.ID, want.ID)
	}
}

func TestRenameComic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := mustCreateComic(t, s, "Untitled 001")

	renamed, err := s.RenameComic(ctx, c.ID, "The Wicked + The Divine")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Title != "The Wicked + The Divine" {
		t.Errorf("title = %q", renamed.Title)
	}

	// Renaming must update the ordering key, so the renamed comic sorts
	// under its article-stripped title.
	mustCreateComic(t, s, "Monstress")
	page, err := s.ListComicsWindow(ctx, 0, 10, domain.QueryParams{Sort: domain.SortNameAsc})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 comics, got %d", len(page))
	}
	if page[0].Title != "Monstress" || page[1].Title != "The Wicked + The Divine" {
		t.Errorf("unexpected order: %q, %q", page[0].Title, page[1].Title)
	}
}

func TestRenameComicNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RenameComic(context.Background(), "cmx-missing", "Anything")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetRemovedAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreateComic(t, s, "Bone")
	b := mustCreateComic(t, s, "Hellboy")

	if err := s.SetRemoved(ctx, []string{a.ID, b.ID}, true); err != nil {
		t.Fatalf("set removed: %v", err)
	}

	got, err := s.GetComic(ctx, a.ID)
	if err != nil {
		t.Fatalf("get comic: %v", err)
	}
	if !got.Removed {
		t.Error("expected comic to be marked removed")
	}

	if err := s.DeleteComics(ctx, []string{a.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetComic(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.GetComic(ctx, b.ID); err != nil {
		t.Errorf("other comic should survive delete: %v", err)
	}
}

func TestToggleCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := mustCreateComic(t, s, "Y: The Last Man")

	completed, err := s.ToggleCompleted(ctx, c.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !completed {
		t.Error("expected completed after first toggle")
	}

	completed, err = s.ToggleCompleted(ctx, c.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if completed {
		t.Error("expected not completed after second toggle")
	}
}

func TestMarkOpened(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := mustCreateComic(t, s, "Locke & Key")

	if err := s.MarkOpened(ctx, c.ID, 12); err != nil {
		t.Fatalf("mark opened: %v", err)
	}

	got, err := s.GetComic(ctx, c.ID)
	if err != nil {
		t.Fatalf("get comic: %v", err)
	}
	if got.Position != 12 {
		t.Errorf("position = %d, want 12", got.Position)
	}
	if got.OpenedAt == nil {
		t.Fatal("expected opened_at to be set")
	}
	if time.Since(*got.OpenedAt) > time.Minute {
		t.Errorf("opened_at too old: %v", got.OpenedAt)
	}
}

func TestCountComicsWithFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreateComic(t, s, "Sandman")
	mustCreateComic(t, s, "Fables")
	c := mustCreateComic(t, s, "Preacher")

	if err := s.SetCompleted(ctx, []string{a.ID}, true); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if err := s.SetRemoved(ctx, []string{c.ID}, true); err != nil {
		t.Fatalf("set removed: %v", err)
	}

	count, err := s.CountComics(ctx, domain.DefaultQueryParams())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("default query count = %d, want 2 (removed comic hidden)", count)
	}

	q := domain.DefaultQueryParams().
		WithFilter(domain.Filter{Group: domain.FilterGroupCompletion, Kind: domain.FilterCompleted})
	count, err = s.CountComics(ctx, q)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("completed count = %d, want 1", count)
	}

	total, err := s.TotalComics(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestCountComicsTitleSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateComic(t, s, "East of West")
	mustCreateComic(t, s, "West Coast Avengers")
	mustCreateComic(t, s, "Descender")

	count, err := s.CountComics(ctx, domain.DefaultQueryParams().WithTitle("west"))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("title search count = %d, want 2", count)
	}

	// LIKE wildcards in user input must match literally, not as patterns.
	count, err = s.CountComics(ctx, domain.DefaultQueryParams().WithTitle("100%"))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("wildcard search count = %d, want 0", count)
	}
}

func TestListComicsWindowOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Titles chosen so lexical order of raw titles differs from sort-key
	// order once leading articles are stripped.
	mustCreateComic(t, s, "The Walking Dead")
	mustCreateComic(t, s, "Invincible")
	mustCreateComic(t, s, "A Contract with God")

	page, err := s.ListComicsWindow(ctx, 0, 10, domain.QueryParams{Sort: domain.SortNameAsc})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"A Contract with God", "Invincible", "The Walking Dead"}
	if len(page) != len(want) {
		t.Fatalf("got %d comics, want %d", len(page), len(want))
	}
	for i, title := range want {
		if page[i].Title != title {
			t.Errorf("page[%d] = %q, want %q", i, page[i].Title, title)
		}
	}
}

func TestListComicsWindowPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	titles := []string{"Akira", "Blame", "Chainsaw Man", "Dorohedoro", "Eden"}
	for _, title := range titles {
		mustCreateComic(t, s, title)
	}

	q := domain.QueryParams{Sort: domain.SortNameAsc}

	first, err := s.ListComicsWindow(ctx, 0, 2, q)
	if err != nil {
		t.Fatalf("first window: %v", err)
	}
	second, err := s.ListComicsWindow(ctx, 2, 2, q)
	if err != nil {
		t.Fatalf("second window: %v", err)
	}
	last, err := s.ListComicsWindow(ctx, 4, 2, q)
	if err != nil {
		t.Fatalf("last window: %v", err)
	}

	got := []string{}
	for _, page := range [][]domain.Comic{first, second, last} {
		for _, c := range page {
			got = append(got, c.Title)
		}
	}
	if len(got) != len(titles) {
		t.Fatalf("paged out %d comics, want %d", len(got), len(titles))
	}
	for i, title := range titles {
		if got[i] != title {
			t.Errorf("got[%d] = %q, want %q", i, got[i], title)
		}
	}
}

func TestListComicsWindowOpenedSort(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreateComic(t, s, "Berserk")
	mustCreateComic(t, s, "Vagabond")
	c := mustCreateComic(t, s, "Vinland Saga")

	if err := s.MarkOpened(ctx, c.ID, 1); err != nil {
		t.Fatalf("mark opened: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := s.MarkOpened(ctx, a.ID, 1); err != nil {
		t.Fatalf("mark opened: %v", err)
	}

	page, err := s.ListComicsWindow(ctx, 0, 10, domain.QueryParams{Sort: domain.SortOpenedDesc})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("got %d comics, want 3", len(page))
	}
	if page[0].Title != "Berserk" || page[1].Title != "Vinland Saga" {
		t.Errorf("most recently opened first, got %q then %q", page[0].Title, page[1].Title)
	}
	// Never-opened comics always sort last.
	if page[2].Title != "Vagabond" {
		t.Errorf("unopened comic should be last, got %q", page[2].Title)
	}
}

func TestUpdateComic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := mustCreateComic(t, s, "Pluto")
	c.PageCount = 200
	c.Corrupted = true
	c.UpdatedAt = time.Now().UTC()

	if err := s.UpdateComic(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetComic(ctx, c.ID)
	if err != nil {
		t.Fatalf("get comic: %v", err)
	}
	if got.PageCount != 200 {
		t.Errorf("page count = %d, want 200", got.PageCount)
	}
	if !got.Corrupted {
		t.Error("expected corrupted flag to persist")
	}
}
