package enrichers

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/cache"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/enrichment/book"
)

const (
	openLibraryBaseURL  = "https://openlibrary.org"
	openLibraryPriority = 1
)

// OpenLibraryEnricher implements the book.Enricher interface for OpenLibrary.
type OpenLibraryEnricher struct {
	baseURL string
	fetcher *book.Fetcher
}

// Compile-time check that OpenLibraryEnricher implements book.Enricher.
var _ book.Enricher = (*OpenLibraryEnricher)(nil)

// NewOpenLibraryEnricher creates a new OpenLibrary enricher.
func NewOpenLibraryEnricher(opts ...Option) *OpenLibraryEnricher {
	o := buildOptions("OpenLibrary", openLibraryBaseURL, opts)
	return &OpenLibraryEnricher{
		baseURL: o.baseURL,
		fetcher: book.NewFetcher(o.limiter, o.fetcherOpts...),
	}
}

// Name returns the human-readable name of this enricher.
func (e *OpenLibraryEnricher) Name() string {
	return "OpenLibrary"
}

// Priority returns the priority for merging data (lower = higher precedence).
func (e *OpenLibraryEnricher) Priority() int {
	return openLibraryPriority
}

// Enrich fetches book data from OpenLibrary by ISBN.
func (e *OpenLibraryEnricher) Enrich(ctx context.Context, isbn string) (*book.EnrichmentData, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, book.ErrInvalidISBN
	}

	cached, _, err := cache.GetOrFetchWithTTL(cache.OpenLibraryTable, isbn, func() (*cachedResult, error) {
		return e.fetchFromAPI(ctx, isbn)
	}, cache.SelectNegativeCacheTTL(isNotFound))
	if err != nil {
		return nil, err
	}
	if cached.NotFound {
		return nil, nil
	}
	return cached.Data, nil
}

// openLibraryBook is one entry of the jscmd=data answer.
type openLibraryBook struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Notes      any    `json:"notes"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Cover struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"cover"`
	Excerpts []struct {
		Text string `json:"text"`
	} `json:"excerpts"`
	Subjects []struct {
		Name string `json:"name"`
	} `json:"subjects"`
	NumberOfPages int    `json:"number_of_pages"`
	PublishDate   string `json:"publish_date"`
}

func (e *OpenLibraryEnricher) fetchFromAPI(ctx context.Context, isbn string) (*cachedResult, error) {
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json",
		e.baseURL, url.QueryEscape("ISBN:"+isbn))

	var result map[string]openLibraryBook
	err := e.fetcher.GetJSON(ctx, u, &result)
	if errors.Is(err, book.ErrBookNotFound) {
		return &cachedResult{NotFound: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("OpenLibrary lookup of %s: %w", isbn, err)
	}

	olBook, ok := result["ISBN:"+isbn]
	if !ok {
		// Unknown ISBNs come back as an empty object
		return &cachedResult{NotFound: true}, nil
	}

	data := &book.EnrichmentData{
		Title:       optString(olBook.Title),
		PublishDate: optString(olBook.PublishDate),
	}

	if desc := extractDescription(olBook.Notes); desc != "" {
		data.Description = &desc
	} else if len(olBook.Excerpts) > 0 {
		data.Description = optString(olBook.Excerpts[0].Text)
	}

	cover := olBook.Cover.Large
	if cover == "" {
		cover = olBook.Cover.Medium
	}
	data.CoverURL = optString(cover)

	if len(olBook.Publishers) > 0 {
		data.Publisher = optString(olBook.Publishers[0].Name)
	}
	if olBook.NumberOfPages > 0 {
		pages := olBook.NumberOfPages
		data.NumberOfPages = &pages
	}
	for _, author := range olBook.Authors {
		if author.Name != "" {
			data.Authors = append(data.Authors, author.Name)
		}
	}
	for _, subject := range olBook.Subjects {
		if subject.Name != "" {
			data.Subjects = append(data.Subjects, subject.Name)
		}
	}

	return &cachedResult{Data: data}, nil
}

// extractDescription handles notes given either as a string or as
// {"type": ..., "value": ...}.
func extractDescription(desc any) string {
	switch v := desc.(type) {
	case string:
		return v
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			return val
		}
	}
	return ""
}
