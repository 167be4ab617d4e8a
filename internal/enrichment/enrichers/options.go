// Package enrichers implements the book metadata sources: Open Library and
// Google Books.
package enrichers

import (
	"strings"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/enrichment/book"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/ratelimit"
)

// Option configures a source.
type Option func(*options)

type options struct {
	baseURL     string
	apiKey      string
	limiter     *ratelimit.Limiter
	fetcherOpts []book.FetcherOption
}

// WithBaseURL points the source at another server, e.g. an httptest one.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithAPIKey sets the API key sent with every request, where supported.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithLimiter replaces the default one request per second limiter.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithFetcherOptions passes retry settings through to the fetcher.
func WithFetcherOptions(opts ...book.FetcherOption) Option {
	return func(o *options) { o.fetcherOpts = append(o.fetcherOpts, opts...) }
}

func buildOptions(name, baseURL string, opts []Option) options {
	o := options{baseURL: baseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limiter == nil {
		o.limiter = ratelimit.New(name, 1)
	}
	return o
}

// normalizeISBN strips hyphens and spaces and upper-cases a trailing x.
// It returns "" for anything that is not ISBN shaped.
func normalizeISBN(isbn string) string {
	normalized := strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(isbn))
	switch len(normalized) {
	case 10, 13:
	default:
		return ""
	}
	for i, r := range normalized {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == 'X' && len(normalized) == 10 && i == 9 {
			continue
		}
		return ""
	}
	return normalized
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// cachedResult wraps EnrichmentData with metadata for caching.
type cachedResult struct {
	Data     *book.EnrichmentData `json:"data"`
	NotFound bool                 `json:"not_found"`
}

func isNotFound(r *cachedResult) bool {
	return r.NotFound
}
