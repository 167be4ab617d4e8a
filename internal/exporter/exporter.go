// Package exporter streams the catalog out as a LibraryThing TSV export.
package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/fileutil"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/librarything"
)

// Exporter writes every non-deleted book of the catalog.
type Exporter struct {
	gw catalog.Gateway
}

// New creates an Exporter reading through gw.
func New(gw catalog.Gateway) *Exporter {
	return &Exporter{gw: gw}
}

// Export writes the header and one row per book to w and returns the
// number of books written.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (int, error) {
	tw := librarything.NewWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	err := e.gw.EachExportRecord(ctx, func(rec *catalog.ExportRecord) error {
		if err := tw.Write(rec); err != nil {
			return fmt.Errorf("failed to write book %d: %w", rec.ID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	if err := tw.Flush(); err != nil {
		return count, fmt.Errorf("failed to flush export: %w", err)
	}
	return count, nil
}

// ExportFile writes an export named after now into dir and returns its path.
func (e *Exporter) ExportFile(ctx context.Context, dir string, now time.Time, overwrite bool) (string, int, error) {
	path := filepath.Join(dir, librarything.ExportFilename(now))

	f, err := fileutil.CreateWithOverwrite(path, overwrite)
	if err != nil {
		return "", 0, err
	}

	count, err := e.Export(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	if err != nil {
		return path, count, err
	}

	slog.Info("Wrote LibraryThing export", "path", path, "books", count)
	return path, count, nil
}
