// Package librarything runs LibraryThing imports and exports from the
// command line.
package librarything

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/config"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/datastore"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/enrichment/book"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/enrichment/enrichers"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/exporter"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/fileutil"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/importer"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/importer/enrich"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/progress"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/tui"
)

// MaxReportErrors is how many row errors a report file lists.
const MaxReportErrors = 100

var (
	runWithProgress = tui.RunWithProgress
	newLookup       = DefaultLookup
	now             = time.Now
)

// ImportParams holds the settings of one import run.
type ImportParams struct {
	Input       string
	Database    string
	Enrich      bool
	Report      string
	Interactive bool
	Overwrite   bool
}

// ExportParams holds the settings of one export run.
type ExportParams struct {
	Database  string
	OutputDir string
	Overwrite bool
}

// ImportWithParams imports a LibraryThing TSV export into the catalog.
func ImportWithParams(ctx context.Context, params ImportParams) (*importer.Result, error) {
	if params.Input == "" {
		return nil, fmt.Errorf("input TSV file is required (provide via --input flag or librarything.tsvfile in config)")
	}

	f, err := os.Open(params.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	store, err := datastore.Open(params.Database)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	opts := importer.DefaultOptions()
	opts.Enrich = opts.Enrich || params.Enrich
	if opts.Enrich {
		opts.Lookup = newLookup()
		if config.CoverDir != "" {
			opts.Covers = fileutil.NewCoverStore(config.CoverDir)
		}
	}

	slog.Info("Importing LibraryThing export", "file", params.Input, "database", params.Database, "enrich", opts.Enrich)

	var res *importer.Result
	work := func(ctx context.Context, reporter progress.Reporter) error {
		opts.Reporter = reporter
		var err error
		res, err = importer.New(store, opts).Import(ctx, f)
		return err
	}

	if params.Interactive {
		err = runWithProgress(ctx, "Importing "+filepath.Base(params.Input), work)
	} else {
		err = work(ctx, progress.NewLog(slog.Default(), 100))
	}
	if err != nil {
		return res, err
	}

	for _, rowErr := range res.FirstErrors(10) {
		slog.Warn("Row skipped", "error", rowErr)
	}

	if params.Report != "" {
		written, err := fileutil.WriteReport(res.Summary(MaxReportErrors), params.Report, params.Overwrite)
		if err != nil {
			return res, fmt.Errorf("failed to write report: %w", err)
		}
		if written {
			slog.Info("Report written", "path", params.Report)
		} else {
			slog.Info("Report exists, not overwriting", "path", params.Report)
		}
	}

	return res, nil
}

// ExportWithParams writes the whole catalog to a timestamped TSV file in
// params.OutputDir and returns its path.
func ExportWithParams(ctx context.Context, params ExportParams) (string, error) {
	if err := os.MkdirAll(params.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	store, err := datastore.Open(params.Database)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	path, _, err := exporter.New(store).ExportFile(ctx, params.OutputDir, now(), params.Overwrite)
	return path, err
}

// DefaultLookup queries Open Library first, then Google Books.
func DefaultLookup() enrich.Lookup {
	retries := enrichers.WithFetcherOptions(book.WithAttempts(config.EnrichAttempts))
	return book.NewClient(
		enrichers.NewOpenLibraryEnricher(retries),
		enrichers.NewGoogleBooksEnricher(retries, enrichers.WithAPIKey(config.GoogleBooksAPIKey)),
	)
}
