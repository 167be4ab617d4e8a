package catalog

import "context"

// Gateway is the persistence contract of the import and export pipelines.
type Gateway interface {
	// WithinTx runs fn inside one transaction. The transaction commits when
	// fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// EachExportRecord calls fn for every non-deleted book, ordered by id.
	EachExportRecord(ctx context.Context, fn func(rec *ExportRecord) error) error
}

// Tx is the set of operations available inside a transaction.
type Tx interface {
	// GetOrCreatePublisher resolves a publisher by exact name, creating it
	// when missing. created reports whether this call inserted the row.
	GetOrCreatePublisher(ctx context.Context, name string) (id int64, created bool, err error)
	GetOrCreateGenre(ctx context.Context, name string) (id int64, created bool, err error)
	GetOrCreateAuthor(ctx context.Context, name string) (id int64, created bool, err error)

	// FindBookByLibraryThingID and FindBookByISBN13 only match non-deleted books.
	FindBookByLibraryThingID(ctx context.Context, ltID int64) (id int64, found bool, err error)
	FindBookByISBN13(ctx context.Context, isbn13 string) (id int64, found bool, err error)

	InsertBook(ctx context.Context, b *BookWrite) (int64, error)
	// UpdateBook overwrites the fields present in b and keeps the stored
	// values of the absent ones.
	UpdateBook(ctx context.Context, id int64, b *BookWrite) error

	DeleteBookAuthors(ctx context.Context, bookID int64) error
	AddBookAuthor(ctx context.Context, bookID, authorID int64, role string, order int) error

	InsertCopies(ctx context.Context, bookID int64, numbers []string) error
	RecalculateAvailability(ctx context.Context, bookID int64) error

	// FillBookMetadata sets cover and description only where the stored
	// value is empty. It reports whether anything changed.
	FillBookMetadata(ctx context.Context, bookID int64, cover, description string) (bool, error)
}
