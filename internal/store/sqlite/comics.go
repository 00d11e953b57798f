package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comixapp/comix-server/internal/domain"
	"github.com/comixapp/comix-server/internal/normalize"
	"github.com/comixapp/comix-server/internal/store"
)

// ErrComicNotFound is returned when a comic does not exist.
var ErrComicNotFound = store.ErrNotFound.WithMessage("comic not found")

// comicColumns is the ordered list of columns selected in comic queries.
// Must match the scan order in scanComic.
const comicColumns = `id, title, sort_key, path, format, size, page_count,
	cover_path, blurhash, completed, removed, corrupted, position,
	added_at, opened_at, updated_at`

// scanComic scans a sql.Row (or sql.Rows via its Scan method) into a domain.Comic.
func scanComic(scanner interface{ Scan(dest ...any) error }) (*domain.Comic, error) {
	var (
		c         domain.Comic
		sortKey   string
		coverPath sql.NullString
		blurhash  sql.NullString
		completed int
		removed   int
		corrupted int
		addedAt   string
		openedAt  sql.NullString
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.Title,
		&sortKey,
		&c.Path,
		&c.Format,
		&c.Size,
		&c.PageCount,
		&coverPath,
		&blurhash,
		&completed,
		&removed,
		&corrupted,
		&c.Position,
		&addedAt,
		&openedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CoverPath = coverPath.String
	c.Blurhash = blurhash.String
	c.Completed = completed != 0
	c.Removed = removed != 0
	c.Corrupted = corrupted != 0

	if c.AddedAt, err = parseTime(addedAt); err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}
	if c.OpenedAt, err = parseNullableTime(openedAt); err != nil {
		return nil, fmt.Errorf("parse opened_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &c, nil
}

// CreateComic inserts a new comic. Returns ErrAlreadyExists when another
// comic already references the same path.
func (s *Store) CreateComic(ctx context.Context, c *domain.Comic) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comics (`+comicColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Title,
		normalize.SortKey(c.Title),
		c.Path,
		c.Format,
		c.Size,
		c.PageCount,
		nullString(c.CoverPath),
		nullString(c.Blurhash),
		boolToInt(c.Completed),
		boolToInt(c.Removed),
		boolToInt(c.Corrupted),
		c.Position,
		formatTime(c.AddedAt),
		nullTimeString(c.OpenedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("comic already exists at " + c.Path)
		}
		return fmt.Errorf("insert comic: %w", err)
	}

	s.notify(store.Change{Kind: store.ChangeComicAdded, ComicIDs: []string{c.ID}})
	return nil
}

// GetComic returns a comic by ID.
func (s *Store) GetComic(ctx context.Context, id string) (*domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+comicColumns+` FROM comics WHERE id = ?`, id)

	c, err := scanComic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrComicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comic: %w", err)
	}
	return c, nil
}

// GetComicByPath returns a comic by its archive path.
func (s *Store) GetComicByPath(ctx context.Context, path string) (*domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+comicColumns+` FROM comics WHERE path = ?`, path)

	c, err := scanComic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrComicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comic by path: %w", err)
	}
	return c, nil
}

// UpdateComic overwrites a comic row.
func (s *Store) UpdateComic(ctx context.Context, c *domain.Comic) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE comics SET
			title = ?, sort_key = ?, path = ?, format = ?, size = ?,
			page_count = ?, cover_path = ?, blurhash = ?, completed = ?,
			removed = ?, corrupted = ?, position = ?, opened_at = ?,
			updated_at = ?
		WHERE id = ?`,
		c.Title,
		normalize.SortKey(c.Title),
		c.Path,
		c.Format,
		c.Size,
		c.PageCount,
		nullString(c.CoverPath),
		nullString(c.Blurhash),
		boolToInt(c.Completed),
		boolToInt(c.Removed),
		boolToInt(c.Corrupted),
		c.Position,
		nullTimeString(c.OpenedAt),
		formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update comic: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrComicNotFound
	}

	s.notify(store.Change{Kind: store.ChangeComicUpdated, ComicIDs: []string{c.ID}})
	return nil
}

// RenameComic updates a comic's display title (and its derived sort key).
func (s *Store) RenameComic(ctx context.Context, id, title string) (*domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE comics SET title = ?, sort_key = ?, updated_at = ? WHERE id = ?`,
		title, normalize.SortKey(title), formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("rename comic: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrComicNotFound
	}

	s.notify(store.Change{Kind: store.ChangeComicUpdated, ComicIDs: []string{id}})
	return s.GetComic(ctx, id)
}

// SetCompleted sets the completed mark on a set of comics.
func (s *Store) SetCompleted(ctx context.Context, ids []string, completed bool) error {
	return s.setFlag(ctx, "completed", ids, completed)
}

// SetRemoved sets the removed mark on a set of comics.
func (s *Store) SetRemoved(ctx context.Context, ids []string, removed bool) error {
	return s.setFlag(ctx, "removed", ids, removed)
}

// SetCorrupted sets the corrupted mark on a set of comics.
func (s *Store) SetCorrupted(ctx context.Context, ids []string, corrupted bool) error {
	return s.setFlag(ctx, "corrupted", ids, corrupted)
}

// setFlag flips one boolean column for a batch of IDs.
// The column name is always one of the fixed callers above, never user input.
func (s *Store) setFlag(ctx context.Context, column string, ids []string, value bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`UPDATE comics SET %s = ?, updated_at = ? WHERE id IN (%s)`,
		column, placeholders(len(ids)))

	args := make([]any, 0, len(ids)+2)
	args = append(args, boolToInt(value), formatTime(time.Now()))
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}

	s.notify(store.Change{Kind: store.ChangeComicUpdated, ComicIDs: ids})
	return nil
}

// ToggleCompleted flips the completed mark on one comic and returns the new value.
func (s *Store) ToggleCompleted(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE comics SET completed = NOT completed, updated_at = ?
		WHERE id = ?
		RETURNING completed`, formatTime(time.Now()), id)

	var completed int
	if err := row.Scan(&completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrComicNotFound
		}
		return false, fmt.Errorf("toggle completed: %w", err)
	}

	s.notify(store.Change{Kind: store.ChangeComicUpdated, ComicIDs: []string{id}})
	return completed != 0, nil
}

// MarkOpened records a read position and bumps the opened timestamp.
func (s *Store) MarkOpened(ctx context.Context, id string, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE comics SET position = ?, opened_at = ?, updated_at = ? WHERE id = ?`,
		position, now, now, id)
	if err != nil {
		return fmt.Errorf("mark opened: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrComicNotFound
	}

	s.notify(store.Change{Kind: store.ChangeComicUpdated, ComicIDs: []string{id}})
	return nil
}

// DeleteComics permanently removes comics by ID. Missing IDs are ignored.
func (s *Store) DeleteComics(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM comics WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete comics: %w", err)
	}

	s.notify(store.Change{Kind: store.ChangeComicDeleted, ComicIDs: ids})
	return nil
}

// CountComics returns the number of comics matching the query.
func (s *Store) CountComics(ctx context.Context, q domain.QueryParams) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	where, args := whereClause(q)
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comics`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comics: %w", err)
	}
	return count, nil
}

// TotalComics returns the number of comics in the library, ignoring filters.
func (s *Store) TotalComics(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comics`).Scan(&count); err != nil {
		return 0, fmt.Errorf("total comics: %w", err)
	}
	return count, nil
}

// ListComicsWindow returns one window of the filtered, ordered comic list.
func (s *Store) ListComicsWindow(ctx context.Context, offset, limit int, q domain.QueryParams) ([]domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.Comic{}, nil
	}

	where, args := whereClause(q)
	query := `SELECT ` + comicColumns + ` FROM comics` + where +
		` ORDER BY ` + orderClause(q.Sort) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comics window: %w", err)
	}
	defer rows.Close()

	comics := make([]domain.Comic, 0, limit)
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, err
		}
		comics = append(comics, *c)
	}
	return comics, rows.Err()
}

// ListAllComics returns every comic, ordered by path. Used by the scanner diff.
func (s *Store) ListAllComics(ctx context.Context) ([]domain.Comic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+comicColumns+` FROM comics ORDER BY path ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all comics: %w", err)
	}
	defer rows.Close()

	var comics []domain.Comic
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, err
		}
		comics = append(comics, *c)
	}
	return comics, rows.Err()
}

// whereClause builds the WHERE fragment (with leading space) for a query.
func whereClause(q domain.QueryParams) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if q.Title != "" {
		clauses = append(clauses, `title LIKE ? ESCAPE '\' COLLATE NOCASE`)
		args = append(args, "%"+escapeLike(q.Title)+"%")
	}

	for _, f := range q.Filters {
		switch f.Kind {
		case domain.FilterCompleted:
			clauses = append(clauses, "completed = 1")
		case domain.FilterNotCompleted:
			clauses = append(clauses, "completed = 0")
		case domain.FilterRemoved:
			clauses = append(clauses, "removed = 1")
		case domain.FilterNotRemoved:
			clauses = append(clauses, "removed = 0")
		case domain.FilterCorrupted:
			clauses = append(clauses, "corrupted = 1")
		case domain.FilterNotCorrupted:
			clauses = append(clauses, "corrupted = 0")
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps a sort order to an ORDER BY body. Every ordering has a
// deterministic tiebreak so windows never overlap between fetches.
func orderClause(sort domain.Sort) string {
	switch sort {
	case domain.SortNameDesc:
		return "sort_key DESC, id DESC"
	case domain.SortAddedAsc:
		return "added_at ASC, id ASC"
	case domain.SortAddedDesc:
		return "added_at DESC, id DESC"
	case domain.SortOpenedAsc:
		return "opened_at IS NULL, opened_at ASC, sort_key ASC, id ASC"
	case domain.SortOpenedDesc:
		return "opened_at IS NULL, opened_at DESC, sort_key ASC, id ASC"
	case domain.SortNameAsc:
		fallthrough
	default:
		return "sort_key ASC, id ASC"
	}
}

// escapeLike escapes LIKE wildcards in user search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// boolToInt converts a bool to its SQLite integer form.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
