package datastore

// CatalogSchema creates the catalog tables. Names of publishers, genres and
// authors are unique so concurrent imports resolve to the same row.
const CatalogSchema = `
CREATE TABLE IF NOT EXISTS publishers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS genres (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS authors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	librarything_id INTEGER,
	publisher_id INTEGER REFERENCES publishers(id),
	genre_id INTEGER REFERENCES genres(id),
	title TEXT NOT NULL,
	subtitle TEXT,
	isbn10 TEXT,
	isbn13 TEXT,
	ean TEXT,
	year INTEGER,
	language TEXT,
	pages INTEGER,
	description TEXT,
	price REAL,
	format TEXT,
	cover TEXT,
	review TEXT,
	rating INTEGER,
	notes TEXT,
	private_notes TEXT,
	physical_description TEXT,
	weight TEXT,
	height TEXT,
	thickness TEXT,
	length TEXT,
	dimensions TEXT,
	lccn TEXT,
	acquired_on TEXT,
	started_on TEXT,
	read_on TEXT,
	barcode TEXT,
	bcid TEXT,
	keywords TEXT,
	collections TEXT,
	original_language TEXT,
	lc_classification TEXT,
	dewey_decimal TEXT,
	dewey_wording TEXT,
	other_call_number TEXT,
	source TEXT,
	entry_date TEXT,
	from_where TEXT,
	oclc TEXT,
	work_id TEXT,
	lending_patron TEXT,
	lending_status TEXT,
	lending_start TEXT,
	lending_end TEXT,
	purchase_price REAL,
	value REAL,
	item_condition TEXT,
	issn TEXT,
	copies_total INTEGER NOT NULL DEFAULT 0,
	copies_available INTEGER NOT NULL DEFAULT 0,
	deleted_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_books_isbn13 ON books(isbn13);
CREATE INDEX IF NOT EXISTS idx_books_librarything_id ON books(librarything_id);

CREATE TABLE IF NOT EXISTS book_authors (
	book_id INTEGER NOT NULL REFERENCES books(id),
	author_id INTEGER NOT NULL REFERENCES authors(id),
	role TEXT NOT NULL,
	credit_order INTEGER NOT NULL,
	PRIMARY KEY (book_id, credit_order)
);

CREATE TABLE IF NOT EXISTS copies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id INTEGER NOT NULL REFERENCES books(id),
	number TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'available',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_copies_book_id ON copies(book_id);
`

// countableTables is the whitelist for Count.
var countableTables = map[string]bool{
	"publishers":   true,
	"genres":       true,
	"authors":      true,
	"books":        true,
	"book_authors": true,
	"copies":       true,
}
