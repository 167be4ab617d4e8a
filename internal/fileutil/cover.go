package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultCoverWidth is the width covers are scaled down to.
const DefaultCoverWidth = 600

// CoverStore downloads book covers into a local directory as JPEG files
// named after the ISBN.
type CoverStore struct {
	dir      string
	maxWidth int
	client   *http.Client
	// Update forces re-downloading even if the cover exists
	Update bool
}

// NewCoverStore creates a CoverStore writing into dir.
func NewCoverStore(dir string) *CoverStore {
	return &CoverStore{
		dir:      dir,
		maxWidth: DefaultCoverWidth,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithMaxWidth changes the width covers are scaled down to.
func (s *CoverStore) WithMaxWidth(width int) *CoverStore {
	s.maxWidth = width
	return s
}

// Path returns where the cover of isbn is stored.
func (s *CoverStore) Path(isbn string) string {
	return filepath.Join(s.dir, SanitizeFilename(isbn)+".jpg")
}

// Store downloads url as the cover of isbn and returns the local path. An
// existing file is kept unless Update is set.
func (s *CoverStore) Store(ctx context.Context, isbn, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no cover URL for %s", isbn)
	}

	localPath := s.Path(isbn)
	if FileExists(localPath) && !s.Update {
		slog.Debug("Cover already exists, skipping download", "path", localPath)
		return localPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cover request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, url)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode cover: %w", err)
	}

	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cover directory: %w", err)
	}
	if err := imaging.Save(img, localPath, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save cover: %w", err)
	}

	slog.Info("Downloaded cover", "path", localPath)
	return localPath, nil
}
