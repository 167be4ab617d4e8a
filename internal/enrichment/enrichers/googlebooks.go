package enrichers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/cache"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/enrichment/book"
)

const (
	googleBooksBaseURL  = "https://www.googleapis.com/books/v1"
	googleBooksPriority = 2
)

// GoogleBooksEnricher implements the book.Enricher interface for Google Books API.
type GoogleBooksEnricher struct {
	baseURL string
	apiKey  string
	fetcher *book.Fetcher
}

// Compile-time check that GoogleBooksEnricher implements book.Enricher.
var _ book.Enricher = (*GoogleBooksEnricher)(nil)

// NewGoogleBooksEnricher creates a new Google Books enricher.
func NewGoogleBooksEnricher(opts ...Option) *GoogleBooksEnricher {
	o := buildOptions("GoogleBooks", googleBooksBaseURL, opts)
	return &GoogleBooksEnricher{
		baseURL: o.baseURL,
		apiKey:  o.apiKey,
		fetcher: book.NewFetcher(o.limiter, o.fetcherOpts...),
	}
}

// Name returns the human-readable name of this enricher.
func (e *GoogleBooksEnricher) Name() string {
	return "Google Books"
}

// Priority returns the priority for merging data (lower = higher precedence).
func (e *GoogleBooksEnricher) Priority() int {
	return googleBooksPriority
}

// Enrich fetches book data from Google Books API by ISBN.
func (e *GoogleBooksEnricher) Enrich(ctx context.Context, isbn string) (*book.EnrichmentData, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, book.ErrInvalidISBN
	}

	cached, _, err := cache.GetOrFetchWithTTL(cache.GoogleBooksTable, isbn, func() (*cachedResult, error) {
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

// googleBooksResponse matches the Google Books API response structure.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			PageCount     int      `json:"pageCount"`
			Categories    []string `json:"categories"`
			ImageLinks    struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (e *GoogleBooksEnricher) fetchFromAPI(ctx context.Context, isbn string) (*cachedResult, error) {
	query := url.Values{"q": {"isbn:" + isbn}}
	if e.apiKey != "" {
		query.Set("key", e.apiKey)
	}
	u := fmt.Sprintf("%s/volumes?%s", e.baseURL, query.Encode())

	var result googleBooksResponse
	err := e.fetcher.GetJSON(ctx, u, &result)
	if errors.Is(err, book.ErrBookNotFound) {
		return &cachedResult{NotFound: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Google Books lookup of %s: %w", isbn, err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return &cachedResult{NotFound: true}, nil
	}

	// First item is the best match
	vol := result.Items[0].VolumeInfo

	data := &book.EnrichmentData{
		Title:       optString(vol.Title),
		Description: optString(vol.Description),
		Publisher:   optString(vol.Publisher),
		PublishDate: optString(vol.PublishedDate),
		Authors:     vol.Authors,
		Subjects:    vol.Categories,
	}
	if vol.PageCount > 0 {
		pages := vol.PageCount
		data.NumberOfPages = &pages
	}

	coverURL := vol.ImageLinks.Thumbnail
	if coverURL == "" {
		coverURL = vol.ImageLinks.SmallThumbnail
	}
	if coverURL != "" {
		// zoom=0 is the largest rendition
		coverURL = strings.Replace(coverURL, "zoom=1", "zoom=0", 1)
		coverURL = strings.Replace(coverURL, "http://", "https://", 1)
		data.CoverURL = &coverURL
	}

	return &cachedResult{Data: data}, nil
}
