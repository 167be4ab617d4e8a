package cache

// Cache tables share one layout: cache_key is the lookup key (an ISBN),
// expires_at (unix milliseconds) is set per entry so negative results can
// expire sooner.
const cacheTableSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_expires_at ON %[1]s(expires_at);
`

const (
	OpenLibraryTable = "openlibrary_cache"
	GoogleBooksTable = "googlebooks_cache"
)

// ValidCacheTableNames is the whitelist of cache tables. Table names are
// interpolated into SQL, so every query checks against it.
var ValidCacheTableNames = map[string]bool{
	OpenLibraryTable: true,
	GoogleBooksTable: true,
}

// Sources maps the source names accepted on the command line to tables.
var Sources = map[string]string{
	"openlibrary": OpenLibraryTable,
	"googlebooks": GoogleBooksTable,
}
