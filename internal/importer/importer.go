// Package importer drives a LibraryThing TSV import: read, map, validate
// and persist one row at a time, each row in its own transaction.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/config"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/enrichment/book"
	pinerrors "github.com/fabiodalez-dev/Pinakes-sub009/internal/errors"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/importer/enrich"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/librarything"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/progress"
)

// CoverStore keeps a local copy of a remote cover image and returns the
// reference to store on the book.
type CoverStore interface {
	Store(ctx context.Context, isbn, url string) (string, error)
}

// Options configures an Importer.
type Options struct {
	// MaxRows caps the data rows of one run.
	MaxRows int
	// MaxCopies caps the copies created for one book.
	MaxCopies int

	// Enrich turns on metadata lookups for rows with an ISBN-13.
	Enrich            bool
	Lookup            enrich.Lookup
	EnrichMaxItems    int
	EnrichMaxDuration time.Duration
	// EnrichPause is waited after every lookup.
	EnrichPause time.Duration
	// Sleep replaces the pause timer in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	// Covers, when set, stores enriched covers locally.
	Covers CoverStore

	// Reporter receives progress; nil discards it.
	Reporter progress.Reporter
}

// DefaultOptions returns options filled from the loaded configuration.
func DefaultOptions() Options {
	return Options{
		MaxRows:           config.MaxRows,
		MaxCopies:         config.MaxCopies,
		Enrich:            config.Enrich,
		EnrichMaxItems:    config.EnrichMaxItems,
		EnrichMaxDuration: config.EnrichMaxDuration,
		EnrichPause:       config.EnrichPause,
	}
}

// Importer imports LibraryThing exports into the catalog.
type Importer struct {
	gw        catalog.Gateway
	validator *librarything.Validator
	opts      Options
}

// New creates an Importer writing through gw.
func New(gw catalog.Gateway, opts Options) *Importer {
	if opts.MaxRows <= 0 {
		opts.MaxRows = config.DefaultMaxRows
	}
	if opts.MaxCopies <= 0 {
		opts.MaxCopies = config.DefaultMaxCopies
	}
	if opts.EnrichMaxItems <= 0 {
		opts.EnrichMaxItems = config.DefaultEnrichMaxItems
	}
	if opts.EnrichMaxDuration <= 0 {
		opts.EnrichMaxDuration = config.DefaultEnrichMaxDuration
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Discard
	}
	return &Importer{
		gw:        gw,
		validator: librarything.NewValidator(),
		opts:      opts,
	}
}

// Import reads src to the end. The error return is reserved for fatal
// problems (unreadable input, wrong header, cancellation); row failures
// are collected in the Result.
func (imp *Importer) Import(ctx context.Context, src io.ReadSeeker) (*Result, error) {
	reporter := imp.opts.Reporter

	r, err := librarything.NewReader(src)
	if err != nil {
		reporter.Report(progress.Snapshot{Status: progress.StatusFailed})
		return nil, err
	}

	total, err := r.Count()
	if err != nil {
		reporter.Report(progress.Snapshot{Status: progress.StatusFailed})
		return nil, err
	}

	res := &Result{Total: total}
	reporter.Report(progress.Snapshot{Status: progress.StatusRunning, Total: total})

	var budget *book.Budget
	if imp.opts.Enrich && imp.opts.Lookup != nil {
		budget = book.NewBudget(imp.opts.EnrichMaxItems, imp.opts.EnrichMaxDuration)
	}

	header := r.Header()
	row, processed := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			reporter.Report(progress.Snapshot{Status: progress.StatusFailed, Current: row, Total: total})
			return res, cancelCause(ctx)
		}

		record, line, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		// Row numbers in errors follow the file: the header is line 1.
		dataRow := line - 1

		if err == nil && librarything.IsBlankRecord(record) {
			continue
		}
		if processed >= imp.opts.MaxRows {
			res.Errors = append(res.Errors, &pinerrors.RowLimitError{Limit: imp.opts.MaxRows})
			slog.Warn("Row limit reached, stopping import", "limit", imp.opts.MaxRows)
			break
		}
		processed++

		if err != nil {
			if !errors.Is(err, librarything.ErrMalformedRecord) {
				reporter.Report(progress.Snapshot{Status: progress.StatusFailed, Current: row, Total: total})
				return res, pinerrors.NewFormatError("cannot read input", err)
			}
			res.rowFailed(dataRow, "", err.Error())
			continue
		}

		if len(record) != len(header) {
			res.rowFailed(dataRow, "", fmt.Sprintf("expected %d columns, found %d", len(header), len(record)))
			continue
		}

		nb := librarything.Map(librarything.NewRow(header, record))
		if err := imp.validator.Validate(&nb); err != nil {
			res.rowFailed(dataRow, nb.Title, err.Error())
			continue
		}

		out, err := imp.importRow(ctx, &nb)
		if err != nil {
			slog.Warn("Row import failed", "row", dataRow, "title", nb.Title, "error", err)
			res.rowFailed(dataRow, nb.Title, err.Error())
			continue
		}

		if out.created {
			res.Created++
		} else {
			res.Updated++
		}
		res.AuthorsCreated += out.authorsCreated
		res.PublishersCreated += out.publishersCreated

		reporter.Report(progress.Snapshot{
			Status:      progress.StatusRunning,
			Current:     row,
			Total:       total,
			CurrentBook: nb.Title,
		})

		if budget != nil && nb.ISBN13 != "" {
			if err := imp.enrichRow(ctx, budget, out.bookID, nb.ISBN13, res); err != nil {
				reporter.Report(progress.Snapshot{Status: progress.StatusFailed, Current: row, Total: total})
				return res, cancelCause(ctx)
			}
		}
	}

	reporter.Report(progress.Snapshot{Status: progress.StatusCompleted, Current: row, Total: total})
	slog.Info("LibraryThing import finished",
		"created", res.Created,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"enriched", res.Enriched,
		"total", res.Total)

	return res, nil
}

type rowOutcome struct {
	bookID            int64
	created           bool
	authorsCreated    int
	publishersCreated int
}

// importRow writes one mapped row inside a single transaction.
func (imp *Importer) importRow(ctx context.Context, nb *librarything.NormalizedBook) (rowOutcome, error) {
	var out rowOutcome

	err := imp.gw.WithinTx(ctx, func(tx catalog.Tx) error {
		out = rowOutcome{}
		w := &catalog.BookWrite{BookFields: nb.BookFields, LibraryThingID: nb.ExternalID}

		if nb.Publisher != "" {
			id, created, err := tx.GetOrCreatePublisher(ctx, nb.Publisher)
			if err != nil {
				return fmt.Errorf("publisher %q: %w", nb.Publisher, err)
			}
			w.PublisherID = &id
			if created {
				out.publishersCreated++
			}
		}

		if nb.Genre != "" {
			if id, _, err := tx.GetOrCreateGenre(ctx, nb.Genre); err != nil {
				slog.Debug("Genre not resolved, leaving book without genre", "genre", nb.Genre, "error", err)
			} else {
				w.GenreID = &id
			}
		}

		id, found, err := findBook(ctx, tx, nb)
		if err != nil {
			return err
		}

		if found {
			if err := tx.UpdateBook(ctx, id, w); err != nil {
				return fmt.Errorf("update book %d: %w", id, err)
			}
			if err := tx.DeleteBookAuthors(ctx, id); err != nil {
				return fmt.Errorf("clear authors of book %d: %w", id, err)
			}
		} else {
			id, err = tx.InsertBook(ctx, w)
			if err != nil {
				return fmt.Errorf("insert book: %w", err)
			}
			out.created = true
		}
		out.bookID = id

		order := 0
		for _, name := range nb.Authors {
			if strings.TrimSpace(name) == "" {
				continue
			}
			authorID, created, err := tx.GetOrCreateAuthor(ctx, name)
			if err != nil {
				return fmt.Errorf("author %q: %w", name, err)
			}
			order++
			if err := tx.AddBookAuthor(ctx, id, authorID, catalog.RolePrimary, order); err != nil {
				return fmt.Errorf("link author %q: %w", name, err)
			}
			if created {
				out.authorsCreated++
			}
		}

		if out.created {
			copies := min(max(nb.Copies, 1), imp.opts.MaxCopies)
			if err := tx.InsertCopies(ctx, id, catalog.CopyNumbers(nb.ISBN13, nb.ISBN10, id, copies)); err != nil {
				return fmt.Errorf("insert copies: %w", err)
			}
			if err := tx.RecalculateAvailability(ctx, id); err != nil {
				return fmt.Errorf("recalculate availability: %w", err)
			}
		}

		return nil
	})

	return out, err
}

// findBook resolves the identity of a row: LibraryThing id first, then ISBN-13.
func findBook(ctx context.Context, tx catalog.Tx, nb *librarything.NormalizedBook) (int64, bool, error) {
	if nb.ExternalID != nil {
		id, found, err := tx.FindBookByLibraryThingID(ctx, *nb.ExternalID)
		if err != nil {
			return 0, false, fmt.Errorf("find book by LibraryThing id: %w", err)
		}
		if found {
			return id, true, nil
		}
	}
	if nb.ISBN13 != "" {
		id, found, err := tx.FindBookByISBN13(ctx, nb.ISBN13)
		if err != nil {
			return 0, false, fmt.Errorf("find book by ISBN-13: %w", err)
		}
		return id, found, nil
	}
	return 0, false, nil
}

// enrichRow fills the missing cover and description of a committed book.
// Only cancellation is returned as an error.
func (imp *Importer) enrichRow(ctx context.Context, budget *book.Budget, bookID int64, isbn string, res *Result) error {
	step, err := enrich.Enrich(ctx, isbn, enrich.Options{
		Lookup: imp.opts.Lookup,
		Budget: budget,
		Apply: func(ctx context.Context, m book.Metadata) (bool, error) {
			return imp.applyMetadata(ctx, bookID, isbn, m)
		},
		OnError: func(err error) {
			slog.Debug("Enrichment not applied", "isbn", isbn, "error", err)
		},
		Pause: imp.opts.EnrichPause,
		Sleep: imp.opts.Sleep,
	})
	if err != nil {
		return err
	}
	if step.Applied {
		res.Enriched++
	}
	return nil
}

func (imp *Importer) applyMetadata(ctx context.Context, bookID int64, isbn string, m book.Metadata) (bool, error) {
	cover := m.Cover
	if cover != "" && imp.opts.Covers != nil {
		local, err := imp.opts.Covers.Store(ctx, isbn, cover)
		if err != nil {
			slog.Debug("Cover not stored locally, keeping remote URL", "isbn", isbn, "error", err)
		} else {
			cover = local
		}
	}

	var changed bool
	err := imp.gw.WithinTx(ctx, func(tx catalog.Tx) error {
		var err error
		changed, err = tx.FillBookMetadata(ctx, bookID, cover, m.Description)
		return err
	})
	return changed, err
}

// cancelCause prefers a StopProcessingError cause over the bare ctx error.
func cancelCause(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return ctx.Err()
}
