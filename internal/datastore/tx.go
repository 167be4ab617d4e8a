package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

type sqliteTx struct {
	tx *sql.Tx
}

var _ catalog.Tx = (*sqliteTx)(nil)

func (t *sqliteTx) GetOrCreatePublisher(ctx context.Context, name string) (int64, bool, error) {
	return t.getOrCreateByName(ctx, "publishers", name)
}

func (t *sqliteTx) GetOrCreateGenre(ctx context.Context, name string) (int64, bool, error) {
	return t.getOrCreateByName(ctx, "genres", name)
}

func (t *sqliteTx) GetOrCreateAuthor(ctx context.Context, name string) (int64, bool, error) {
	return t.getOrCreateByName(ctx, "authors", name)
}

// getOrCreateByName inserts the name unless it exists, then reads its id.
// The UNIQUE constraint makes this safe against concurrent imports. table
// is always one of the fixed name tables.
func (t *sqliteTx) getOrCreateByName(ctx context.Context, table, name string) (int64, bool, error) {
	name = catalog.NormalizeName(name)
	if name == "" {
		return 0, false, fmt.Errorf("empty %s name", strings.TrimSuffix(table, "s"))
	}

	res, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (name) VALUES (?) ON CONFLICT(name) DO NOTHING", table), name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var id int64
	if err := t.tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE name = ?", table), name).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to look up %s %q: %w", table, name, err)
	}
	return id, inserted > 0, nil
}

func (t *sqliteTx) findBook(ctx context.Context, column string, value any) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT id FROM books WHERE %s = ? AND deleted_at IS NULL ORDER BY id LIMIT 1", column),
		value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to find book by %s: %w", column, err)
	}
	return id, true, nil
}

func (t *sqliteTx) FindBookByLibraryThingID(ctx context.Context, ltID int64) (int64, bool, error) {
	return t.findBook(ctx, "librarything_id", ltID)
}

func (t *sqliteTx) FindBookByISBN13(ctx context.Context, isbn13 string) (int64, bool, error) {
	if isbn13 == "" {
		return 0, false, nil
	}
	return t.findBook(ctx, "isbn13", isbn13)
}

func refColumns(b *catalog.BookWrite) ([]string, []any) {
	return []string{"librarything_id", "publisher_id", "genre_id"},
		[]any{nullInt64(b.LibraryThingID), nullInt64(b.PublisherID), nullInt64(b.GenreID)}
}

func (t *sqliteTx) InsertBook(ctx context.Context, b *catalog.BookWrite) (int64, error) {
	cols := columnsOf(&b.BookFields)
	names, values := refColumns(b)
	names = append(names, cols.names("")...)
	values = append(values, cols.values()...)

	query := fmt.Sprintf("INSERT INTO books (%s) VALUES (%s)",
		strings.Join(names, ", "), placeholders(len(names)))

	res, err := t.tx.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get book id: %w", err)
	}
	return id, nil
}

func (t *sqliteTx) UpdateBook(ctx context.Context, id int64, b *catalog.BookWrite) error {
	cols := columnsOf(&b.BookFields)
	names, values := refColumns(b)
	names = append(names, cols.names("")...)
	values = append(values, cols.values()...)

	assignments := make([]string, len(names))
	for i, name := range names {
		assignments[i] = fmt.Sprintf("%s = COALESCE(?, %s)", name, name)
	}
	query := fmt.Sprintf("UPDATE books SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		strings.Join(assignments, ", "))

	if _, err := t.tx.ExecContext(ctx, query, append(values, id)...); err != nil {
		return fmt.Errorf("failed to update book %d: %w", id, err)
	}
	return nil
}

func (t *sqliteTx) DeleteBookAuthors(ctx context.Context, bookID int64) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM book_authors WHERE book_id = ?", bookID); err != nil {
		return fmt.Errorf("failed to delete authors of book %d: %w", bookID, err)
	}
	return nil
}

func (t *sqliteTx) AddBookAuthor(ctx context.Context, bookID, authorID int64, role string, order int) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO book_authors (book_id, author_id, role, credit_order) VALUES (?, ?, ?, ?)",
		bookID, authorID, role, order)
	if err != nil {
		return fmt.Errorf("failed to link author %d to book %d: %w", authorID, bookID, err)
	}
	return nil
}

func (t *sqliteTx) InsertCopies(ctx context.Context, bookID int64, numbers []string) error {
	if len(numbers) == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(ctx, "INSERT INTO copies (book_id, number) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, number := range numbers {
		if _, err := stmt.ExecContext(ctx, bookID, number); err != nil {
			return fmt.Errorf("failed to insert copy %s: %w", number, err)
		}
	}
	return nil
}

func (t *sqliteTx) RecalculateAvailability(ctx context.Context, bookID int64) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE books SET
			copies_total = (SELECT COUNT(*) FROM copies WHERE book_id = ?1),
			copies_available = (SELECT COUNT(*) FROM copies WHERE book_id = ?1 AND status = 'available'),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?1`, bookID)
	if err != nil {
		return fmt.Errorf("failed to recalculate availability of book %d: %w", bookID, err)
	}
	return nil
}

func (t *sqliteTx) FillBookMetadata(ctx context.Context, bookID int64, cover, description string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE books SET
			cover = CASE WHEN COALESCE(cover, '') = '' AND ?1 <> '' THEN ?1 ELSE cover END,
			description = CASE WHEN COALESCE(description, '') = '' AND ?2 <> '' THEN ?2 ELSE description END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?3
			AND ((COALESCE(cover, '') = '' AND ?1 <> '') OR (COALESCE(description, '') = '' AND ?2 <> ''))`,
		cover, description, bookID)
	if err != nil {
		return false, fmt.Errorf("failed to fill metadata of book %d: %w", bookID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
