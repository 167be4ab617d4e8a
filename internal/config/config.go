// Package config holds the process wide settings read from viper.
package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Default limits of an import run.
const (
	DefaultMaxRows           = 10000
	DefaultMaxCopies         = 100
	DefaultEnrichMaxItems    = 50
	DefaultEnrichMaxDuration = 300 * time.Second
	DefaultEnrichPause       = 3 * time.Second
	DefaultEnrichAttempts    = 5
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing report and export files are replaced
	OverwriteFiles bool
	// DatabaseFile is the catalog SQLite database
	DatabaseFile string
	// GoogleBooksAPIKey is the optional Google Books API key
	GoogleBooksAPIKey string
	// CoverDir is where downloaded covers are stored; empty keeps remote URLs
	CoverDir string

	// Enrich enables metadata enrichment for imports by default
	Enrich bool
	// MaxRows is the hard cap on data rows per import
	MaxRows int
	// MaxCopies caps the copy count of a single row
	MaxCopies int

	EnrichMaxItems    int
	EnrichMaxDuration time.Duration
	EnrichPause       time.Duration
	EnrichAttempts    int
)

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("overwritefiles", false)

	viper.SetDefault("database.file", "./pinakes.db")

	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	viper.SetDefault("import.enrich", false)
	viper.SetDefault("import.maxrows", DefaultMaxRows)
	viper.SetDefault("import.maxcopies", DefaultMaxCopies)

	viper.SetDefault("enrichment.maxitems", DefaultEnrichMaxItems)
	viper.SetDefault("enrichment.maxduration", DefaultEnrichMaxDuration.String())
	viper.SetDefault("enrichment.pause", DefaultEnrichPause.String())
	viper.SetDefault("enrichment.attempts", DefaultEnrichAttempts)
	viper.SetDefault("enrichment.coverdir", "")

	viper.SetDefault("googlebooks.apikey", "")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("log.level", "info")
}

// InitConfig initializes the global configuration
func InitConfig() {
	OverwriteFiles = viper.GetBool("overwritefiles")
	DatabaseFile = viper.GetString("database.file")
	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")
	CoverDir = viper.GetString("enrichment.coverdir")

	Enrich = viper.GetBool("import.enrich")
	MaxRows = positiveInt("import.maxrows", DefaultMaxRows)
	MaxCopies = positiveInt("import.maxcopies", DefaultMaxCopies)

	EnrichMaxItems = positiveInt("enrichment.maxitems", DefaultEnrichMaxItems)
	EnrichMaxDuration = duration("enrichment.maxduration", DefaultEnrichMaxDuration)
	EnrichPause = duration("enrichment.pause", DefaultEnrichPause)
	EnrichAttempts = positiveInt("enrichment.attempts", DefaultEnrichAttempts)
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// LogLevel parses log.level, falling back to info.
func LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func positiveInt(key string, fallback int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return fallback
}

// duration accepts Go durations; a zero pause is allowed.
func duration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}
