package testutil

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles    bool
	DatabaseFile      string
	GoogleBooksAPIKey string
	CoverDir          string
	Enrich            bool
	MaxRows           int
	MaxCopies         int
	EnrichMaxItems    int
	EnrichMaxDuration time.Duration
	EnrichPause       time.Duration
	EnrichAttempts    int
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OverwriteFiles:    config.OverwriteFiles,
		DatabaseFile:      config.DatabaseFile,
		GoogleBooksAPIKey: config.GoogleBooksAPIKey,
		CoverDir:          config.CoverDir,
		Enrich:            config.Enrich,
		MaxRows:           config.MaxRows,
		MaxCopies:         config.MaxCopies,
		EnrichMaxItems:    config.EnrichMaxItems,
		EnrichMaxDuration: config.EnrichMaxDuration,
		EnrichPause:       config.EnrichPause,
		EnrichAttempts:    config.EnrichAttempts,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OverwriteFiles = state.OverwriteFiles
	config.DatabaseFile = state.DatabaseFile
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.CoverDir = state.CoverDir
	config.Enrich = state.Enrich
	config.MaxRows = state.MaxRows
	config.MaxCopies = state.MaxCopies
	config.EnrichMaxItems = state.EnrichMaxItems
	config.EnrichMaxDuration = state.EnrichMaxDuration
	config.EnrichPause = state.EnrichPause
	config.EnrichAttempts = state.EnrichAttempts
}

// SetTestConfig loads the defaults into viper and the config package with
// enrichment pauses disabled, and restores the previous state when the
// test completes.
func SetTestConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	config.SetDefaults()
	viper.Set("enrichment.pause", "0s")
	config.InitConfig()
	config.OverwriteFiles = true

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset, so an unset key stays set
	})
}

// SetupTestCache points cache.dbfile into the environment and returns the
// cache directory.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	env.MkdirAll("cache")
	viper.Set("cache.dbfile", env.Path("cache", "test-cache.db"))
	viper.Set("cache.ttl", "24h")

	return env.Path("cache")
}
