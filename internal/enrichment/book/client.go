package book

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// Client asks the sources in priority order and merges what they return.
type Client struct {
	enrichers []Enricher
	merger    Merger
}

// NewClient creates a Client over the given sources.
func NewClient(enrichers ...Enricher) *Client {
	sorted := slices.Clone(enrichers)
	slices.SortStableFunc(sorted, func(a, b Enricher) int {
		return a.Priority() - b.Priority()
	})
	return &Client{
		enrichers: sorted,
		merger:    NewPriorityMerger(),
	}
}

// Lookup returns the cover and description known for isbn. It never fails:
// source errors are logged and count as "no data". Lower priority sources
// are only asked while a field is still missing.
func (c *Client) Lookup(ctx context.Context, isbn string) Metadata {
	var results []EnricherResult

	for _, e := range c.enrichers {
		if ctx.Err() != nil {
			break
		}

		data, err := e.Enrich(ctx, isbn)
		switch {
		case errors.Is(err, ErrBookNotFound):
			slog.Debug("Book not known to source", "source", e.Name(), "isbn", isbn)
		case err != nil:
			slog.Debug("Enrichment source failed", "source", e.Name(), "isbn", isbn, "error", err)
		case data == nil:
			slog.Debug("No enrichment data", "source", e.Name(), "isbn", isbn)
		default:
			results = append(results, EnricherResult{Data: data, Source: e.Name(), Priority: e.Priority()})
		}

		m := MetadataOf(c.merger.Merge(results))
		if m.Cover != "" && m.Description != "" {
			return m
		}
	}

	return MetadataOf(c.merger.Merge(results))
}
