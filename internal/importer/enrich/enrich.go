// Package enrich runs the best-effort metadata step of an import row:
// budget check, lookup, apply, then the courtesy pause.
package enrich

import (
	"context"
	"time"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/enrichment/book"
)

// Lookup fetches supplementary metadata for an ISBN. It never fails.
type Lookup interface {
	Lookup(ctx context.Context, isbn string) book.Metadata
}

// Options defines one enrichment step.
type Options struct {
	// Lookup is the metadata client.
	Lookup Lookup
	// Budget bounds the run; an exhausted budget skips the step.
	Budget *book.Budget
	// Apply stores the metadata on the book and reports whether any field changed.
	Apply func(ctx context.Context, m book.Metadata) (bool, error)
	// OnError handles Apply errors (logging). They never fail the row.
	OnError func(error)
	// Pause is waited after every attempted lookup.
	Pause time.Duration
	// Sleep waits for d or until ctx is done. Defaults to book.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Result reports what the step did.
type Result struct {
	// Attempted is true when the budget allowed a lookup.
	Attempted bool
	// Applied is true when Apply changed the book.
	Applied bool
	// Err is the Apply error, if any.
	Err error
}

// Enrich runs the step for isbn. The returned error is non-nil only when
// ctx is cancelled during the pause; lookup and apply failures are
// reported through Result.
func Enrich(ctx context.Context, isbn string, opts Options) (*Result, error) {
	res := &Result{}

	if isbn == "" || opts.Lookup == nil || opts.Apply == nil {
		return res, nil
	}
	if opts.Budget != nil && !opts.Budget.Take() {
		return res, nil
	}
	res.Attempted = true

	if m := opts.Lookup.Lookup(ctx, isbn); !m.Empty() {
		applied, err := opts.Apply(ctx, m)
		if err != nil {
			res.Err = err
			if opts.OnError != nil {
				opts.OnError(err)
			}
		}
		res.Applied = applied && err == nil
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = book.Sleep
	}
	if opts.Pause > 0 {
		if err := sleep(ctx, opts.Pause); err != nil {
			return res, err
		}
	}

	return res, nil
}
