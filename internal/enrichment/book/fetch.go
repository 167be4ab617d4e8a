package book

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	pinerrors "github.com/fabiodalez-dev/Pinakes-sub009/internal/errors"
	"github.com/fabiodalez-dev/Pinakes-sub009/internal/ratelimit"
)

const (
	DefaultAttempts  = 5
	DefaultBaseDelay = time.Second
	DefaultMaxDelay  = 8 * time.Second

	userAgent = "Pinakes/1.0 (LibraryThing import)"
)

// Fetcher performs JSON GET requests against a metadata source, retrying
// transport errors, 429 and 5xx answers with exponential backoff.
type Fetcher struct {
	client    *http.Client
	limiter   *ratelimit.Limiter
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = client }
}

// WithAttempts sets the total number of attempts, including the first one.
func WithAttempts(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithBackoff sets the first retry delay and the cap the doubling stops at.
func WithBackoff(base, ceiling time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.baseDelay = base
		f.maxDelay = ceiling
	}
}

// WithSleep replaces the context aware sleep between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) { f.sleep = sleep }
}

// NewFetcher creates a Fetcher that waits on limiter before every request.
func NewFetcher(limiter *ratelimit.Limiter, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   limiter,
		attempts:  DefaultAttempts,
		baseDelay: DefaultBaseDelay,
		maxDelay:  DefaultMaxDelay,
		sleep:     Sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff returns the delay before retry number n (1-based): base doubled
// n-1 times, capped at ceiling.
func Backoff(n int, base, ceiling time.Duration) time.Duration {
	delay := base
	for i := 1; i < n && delay < ceiling; i++ {
		delay *= 2
	}
	return min(delay, ceiling)
}

// GetJSON decodes the JSON body of url into target. A 404 answer returns
// ErrBookNotFound; other non-retryable statuses return a *StatusError.
func (f *Fetcher) GetJSON(ctx context.Context, url string, target any) error {
	var lastErr error
	var retryAfter time.Duration

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			delay := max(Backoff(attempt-1, f.baseDelay, f.maxDelay), min(retryAfter, f.maxDelay))
			if err := f.sleep(ctx, delay); err != nil {
				return err
			}
			retryAfter = 0
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := f.do(ctx, url, target, &retryAfter)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("giving up after %d attempts: %w", f.attempts, lastErr)
}

// do performs one request and reports whether a failure may be retried.
func (f *Fetcher) do(ctx context.Context, url string, target any, retryAfter *time.Duration) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return false, fmt.Errorf("decoding response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrBookNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		*retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		return true, pinerrors.NewRateLimitErrorWithRetry(
			fmt.Sprintf("%s rate limited the request", f.limiter.Name()), *retryAfter)
	case resp.StatusCode >= 500:
		return true, &StatusError{URL: url, StatusCode: resp.StatusCode}
	default:
		return false, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(value string) time.Duration {
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
