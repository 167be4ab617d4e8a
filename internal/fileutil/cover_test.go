package fileutil

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/testutil"
)

func imageServer(t *testing.T, width, height int, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	img := imaging.New(width, height, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_ = imaging.Encode(w, img, imaging.PNG)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCoverStore_StoreResizes(t *testing.T) {
	env := testutil.NewTestEnv(t)
	var hits atomic.Int32
	server := imageServer(t, 1200, 1800, &hits)

	store := NewCoverStore(env.Path("covers")).WithMaxWidth(300)
	path, err := store.Store(context.Background(), "9780451524935", server.URL+"/cover.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.Path("covers"), "9780451524935.jpg"), path)

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 450, img.Bounds().Dy())
}

func TestCoverStore_SmallImagesKeepTheirSize(t *testing.T) {
	env := testutil.NewTestEnv(t)
	var hits atomic.Int32
	server := imageServer(t, 100, 150, &hits)

	path, err := NewCoverStore(env.Path("covers")).Store(context.Background(), "0451524934", server.URL)
	require.NoError(t, err)

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
}

func TestCoverStore_SkipsExisting(t *testing.T) {
	env := testutil.NewTestEnv(t)
	var hits atomic.Int32
	server := imageServer(t, 50, 50, &hits)
	store := NewCoverStore(env.Path("covers"))

	_, err := store.Store(context.Background(), "9780451524935", server.URL)
	require.NoError(t, err)
	_, err = store.Store(context.Background(), "9780451524935", server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	store.Update = true
	_, err = store.Store(context.Background(), "9780451524935", server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCoverStore_Errors(t *testing.T) {
	env := testutil.NewTestEnv(t)

	notFound := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(notFound.Close)
	notImage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake image data"))
	}))
	t.Cleanup(notImage.Close)

	store := NewCoverStore(env.Path("covers"))

	_, err := store.Store(context.Background(), "1", "")
	assert.Error(t, err)

	_, err = store.Store(context.Background(), "2", notFound.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")

	_, err = store.Store(context.Background(), "3", notImage.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode cover")

	_, statErr := os.Stat(store.Path("3"))
	assert.True(t, os.IsNotExist(statErr))
}
