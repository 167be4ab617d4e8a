package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

// ErrBookNotFound is returned by Book for unknown or deleted ids.
var ErrBookNotFound = errors.New("book not found")

// SQLiteStore implements catalog.Gateway on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

var _ catalog.Gateway = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Open connects to dbPath and creates the catalog tables.
func Open(dbPath string) (*SQLiteStore, error) {
	s := NewSQLiteStore(dbPath)
	if err := s.Connect(); err != nil {
		return nil, err
	}
	if err := s.CreateTable(CatalogSchema); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// Connect opens a connection to the SQLite database
func (s *SQLiteStore) Connect() error {
	dsn := s.dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return errors.Join(fmt.Errorf("failed to connect to database: %w", err), db.Close())
	}
	s.db = db
	return nil
}

// CreateTable creates a new table with the given schema if it doesn't exist
func (s *SQLiteStore) CreateTable(schema string) error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// WithinTx runs fn in a transaction, committing only when fn succeeds.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(tx catalog.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback if we don't commit - ignore errors as they're expected if transaction was committed
		_ = tx.Rollback()
	}()

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func bookSelect(where string) string {
	c := columnsOf(&catalog.BookFields{})
	return fmt.Sprintf(`
		SELECT b.id, b.librarything_id, b.publisher_id, b.genre_id, COALESCE(b.cover, ''),
			b.copies_total, b.copies_available, %s,
			COALESCE(p.name, ''), COALESCE(g.name, '')
		FROM books b
		LEFT JOIN publishers p ON p.id = b.publisher_id
		LEFT JOIN genres g ON g.id = b.genre_id
		WHERE b.deleted_at IS NULL %s
		ORDER BY b.id`, strings.Join(c.names("b."), ", "), where)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExportRecord(row rowScanner) (*catalog.ExportRecord, error) {
	rec := &catalog.ExportRecord{}
	var ltID, publisherID, genreID sql.NullInt64

	fields, apply := columnsOf(&rec.BookFields).scanTargets()
	dest := []any{&rec.ID, &ltID, &publisherID, &genreID, &rec.Cover, &rec.CopiesTotal, &rec.CopiesLeft}
	dest = append(dest, fields...)
	dest = append(dest, &rec.Publisher, &rec.Genre)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	apply()
	rec.LibraryThingID = int64Ptr(ltID)
	rec.PublisherID = int64Ptr(publisherID)
	rec.GenreID = int64Ptr(genreID)
	return rec, nil
}

// EachExportRecord calls fn for every non-deleted book with its authors in
// credit order.
func (s *SQLiteStore) EachExportRecord(ctx context.Context, fn func(rec *catalog.ExportRecord) error) error {
	rows, err := s.db.QueryContext(ctx, bookSelect(""))
	if err != nil {
		return fmt.Errorf("failed to query books: %w", err)
	}

	// Collect first: the connection pool holds a single connection.
	var records []*catalog.ExportRecord
	for rows.Next() {
		rec, err := scanExportRecord(rows)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan book: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("failed to read books: %w", err)
	}
	_ = rows.Close()

	for _, rec := range records {
		authors, err := s.BookAuthors(ctx, rec.ID)
		if err != nil {
			return err
		}
		for _, a := range authors {
			rec.Authors = append(rec.Authors, a.Name)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// Book returns a non-deleted book with its publisher and genre names.
func (s *SQLiteStore) Book(ctx context.Context, id int64) (*catalog.ExportRecord, error) {
	rec, err := scanExportRecord(s.db.QueryRowContext(ctx, bookSelect("AND b.id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book %d: %w", id, err)
	}
	return rec, nil
}

// BookAuthors returns the credited authors of a book in credit order.
func (s *SQLiteStore) BookAuthors(ctx context.Context, bookID int64) ([]catalog.BookAuthor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, ba.role, ba.credit_order
		FROM book_authors ba
		JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = ?
		ORDER BY ba.credit_order`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var authors []catalog.BookAuthor
	for rows.Next() {
		var a catalog.BookAuthor
		if err := rows.Scan(&a.AuthorID, &a.Name, &a.Role, &a.Order); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// Copies returns the physical copies of a book.
func (s *SQLiteStore) Copies(ctx context.Context, bookID int64) ([]catalog.Copy, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, book_id, number, status FROM copies WHERE book_id = ? ORDER BY id", bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query copies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var copies []catalog.Copy
	for rows.Next() {
		var c catalog.Copy
		if err := rows.Scan(&c.ID, &c.BookID, &c.Number, &c.Status); err != nil {
			return nil, fmt.Errorf("failed to scan copy: %w", err)
		}
		copies = append(copies, c)
	}
	return copies, rows.Err()
}

// Count returns the number of rows in one of the catalog tables.
func (s *SQLiteStore) Count(ctx context.Context, table string) (int, error) {
	if !countableTables[table] {
		return 0, fmt.Errorf("invalid table name: %s", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// SoftDeleteBook marks a book deleted; deleted books are invisible to
// imports and exports.
func (s *SQLiteStore) SoftDeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE books SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookNotFound
	}
	return nil
}
