package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lepinkainen/humanlog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"github.com/fabiodalez-dev/Pinakes-sub009/cmd/librarything"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/api"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/cache"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/config"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/datastore"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/fileutil"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/importer"
)

var (
	importLibraryThing = librarything.ImportWithParams
	exportLibraryThing = librarything.ExportWithParams
	isTerminal         = func() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
)

// CLI represents the complete command structure for the pinakes application
type CLI struct {
	// Global flags
	Overwrite bool   `help:"Overwrite existing report and export files"`
	Database  string `name:"db" help:"Path to the catalog SQLite database (defaults to database.file in config)"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Import ImportCmd `cmd:"" help:"Import books into the catalog"`
	Export ExportCmd `cmd:"" help:"Export the catalog"`
	Serve  ServeCmd  `cmd:"" help:"Serve the import and export endpoints over HTTP"`
	Cache  CacheCmd  `cmd:"" help:"Manage the enrichment cache"`
}

// ImportCmd represents the import command and its subcommands
type ImportCmd struct {
	LibraryThing LibraryThingImportCmd `cmd:"" name:"librarything" help:"Import a LibraryThing TSV export"`
}

// ExportCmd represents the export command and its subcommands
type ExportCmd struct {
	LibraryThing LibraryThingExportCmd `cmd:"" name:"librarything" help:"Export the catalog as a LibraryThing TSV file"`
}

// LibraryThingImportCmd represents the librarything import command
type LibraryThingImportCmd struct {
	Input  string `short:"f" help:"Path to LibraryThing TSV export"`
	Enrich bool   `help:"Fill missing covers and descriptions from Open Library and Google Books"`
	Report string `help:"Write a summary report (.json, .yaml or .yml)"`
	NoTUI  bool   `name:"no-tui" help:"Log progress instead of showing a progress bar"`
}

// LibraryThingExportCmd represents the librarything export command
type LibraryThingExportCmd struct {
	Output string `short:"o" help:"Directory to write the export file to" default:"."`
}

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Address to listen on (defaults to server.addr in config)"`
}

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Drop every cached response of one source"`
	Prune      cache.PruneCacheCmd      `cmd:"" help:"Remove expired cache entries"`
}

// Execute runs the Kong-based CLI
func Execute() {
	// A missing .env is fine
	_ = godotenv.Load()

	initConfig()
	initLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli, kongOptions(ctx)...)

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	err := kctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func kongOptions(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name("pinakes"),
		kong.Description("Import and export LibraryThing catalogs."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

func initConfig() {
	config.SetDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}
	if err := viper.BindEnv("database.file", "PINAKES_DB"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
		slog.Debug("Config file not found, using defaults")
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	// Update config based on CLI flags
	config.SetOverwriteFiles(cli.Overwrite || viper.GetBool("overwritefiles"))
	if cli.Database != "" {
		config.DatabaseFile = cli.Database
	}

	// Update cache config
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
}

// Run methods for each command

func (l *LibraryThingImportCmd) Run(ctx context.Context) error {
	// Read from config if value not provided via flag
	input := l.Input
	if input == "" {
		input = viper.GetString("librarything.tsvfile")
	}

	_, err := importLibraryThing(ctx, librarything.ImportParams{
		Input:       input,
		Database:    config.DatabaseFile,
		Enrich:      l.Enrich,
		Report:      l.Report,
		Interactive: !l.NoTUI && isTerminal(),
		Overwrite:   config.OverwriteFiles,
	})
	return err
}

func (l *LibraryThingExportCmd) Run(ctx context.Context) error {
	path, err := exportLibraryThing(ctx, librarything.ExportParams{
		Database:  config.DatabaseFile,
		OutputDir: l.Output,
		Overwrite: config.OverwriteFiles,
	})
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func (s *ServeCmd) Run(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = viper.GetString("server.addr")
	}

	store, err := datastore.Open(config.DatabaseFile)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      api.NewServer(store, serverImportOptions(), slog.Default()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", addr, "database", config.DatabaseFile)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// serverImportOptions always wires the metadata sources since enrich=1 can
// turn enrichment on for a single request.
func serverImportOptions() importer.Options {
	opts := importer.DefaultOptions()
	opts.Lookup = librarything.DefaultLookup()
	if config.CoverDir != "" {
		opts.Covers = fileutil.NewCoverStore(config.CoverDir)
	}
	return opts
}

func initLogging() {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: config.LogLevel(),
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
