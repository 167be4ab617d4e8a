// Package book looks up supplementary book metadata (cover image and
// description) by ISBN from external sources.
package book

import (
	"context"
)

// Enricher is one external metadata source.
type Enricher interface {
	// Name returns the human-readable name of the source (e.g., "OpenLibrary").
	Name() string

	// Priority orders sources when merging; lower values win.
	Priority() int

	// Enrich looks up an ISBN. It returns nil, nil when the source does not
	// know the book, and an error for transport or protocol failures.
	Enrich(ctx context.Context, isbn string) (*EnrichmentData, error)
}

// EnrichmentData is what a source knows about a book. Pointer fields
// distinguish "not set" from "empty string".
type EnrichmentData struct {
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Publisher     *string  `json:"publisher,omitempty"`
	NumberOfPages *int     `json:"number_of_pages,omitempty"`
	CoverURL      *string  `json:"cover_url,omitempty"`
	PublishDate   *string  `json:"publish_date,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	Authors       []string `json:"authors,omitempty"`
}

// Metadata is the supplementary record applied to an imported book.
type Metadata struct {
	Cover       string `json:"cover,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether m carries nothing to apply.
func (m Metadata) Empty() bool {
	return m.Cover == "" && m.Description == ""
}

// MetadataOf extracts the cover and description from merged data.
func MetadataOf(data *EnrichmentData) Metadata {
	var m Metadata
	if data == nil {
		return m
	}
	if data.CoverURL != nil {
		m.Cover = *data.CoverURL
	}
	if data.Description != nil {
		m.Description = *data.Description
	}
	return m
}
