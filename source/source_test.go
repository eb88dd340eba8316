package source_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nicolagi/touchicon/source"
	"github.com/nicolagi/touchicon/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded(t *testing.T) {
	img, err := source.NewEmbedded().Fetch(context.Background())
	require.Nil(t, err)
	assert.Equal(t, "image/png", img.Format)
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.Nil(t, err)
	assert.Equal(t, 512, decoded.Bounds().Dx())
	assert.Equal(t, 512, decoded.Bounds().Dy())
}

func TestRemoteURL(t *testing.T) {
	t.Run("format comes from content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg; charset=binary")
			_, _ = w.Write([]byte("jpeg bytes"))
		}))
		defer srv.Close()
		img, err := source.NewRemoteURL(srv.URL).Fetch(context.Background())
		require.Nil(t, err)
		assert.Equal(t, "image/jpeg", img.Format)
		assert.Equal(t, []byte("jpeg bytes"), img.Data)
	})
	t.Run("error status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		_, err := source.NewRemoteURL(srv.URL).Fetch(context.Background())
		assert.True(t, errors.Is(err, source.ErrFetch))
		assert.Contains(t, err.Error(), "status 404")
	})
	t.Run("missing content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header()["Content-Type"] = nil
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()
		_, err := source.NewRemoteURL(srv.URL).Fetch(context.Background())
		assert.True(t, errors.Is(err, source.ErrFetch))
	})
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := source.NewRemoteURL(url).Fetch(context.Background())
		assert.True(t, errors.Is(err, source.ErrFetch))
	})
	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)
		_, err := source.NewRemoteURL(srv.URL, source.WithTimeout(50*time.Millisecond)).Fetch(context.Background())
		assert.True(t, errors.Is(err, source.ErrFetch))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
	t.Run("throttled fetches wait for the limiter", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.Header().Set("Content-Type", "image/png")
		}))
		defer srv.Close()
		s := source.NewRemoteURL(srv.URL,
			source.WithRateLimit(0.001, 1),
			source.WithTimeout(100*time.Millisecond),
		)
		_, err := s.Fetch(context.Background())
		require.Nil(t, err)
		_, err = s.Fetch(context.Background())
		assert.True(t, errors.Is(err, source.ErrFetch))
		assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	})
}

func TestManifestedBlobStore(t *testing.T) {
	manifest, err := source.LoadManifest(strings.NewReader(`{
		"icon.png": "icon.4f2a9c.png"
		"logo.webp": "logo.77b1e0"
	}`))
	require.Nil(t, err)
	blobs := storage.NewInMemoryStore()
	require.Nil(t, blobs.Put("icon.4f2a9c.png", []byte("png bytes")))
	require.Nil(t, blobs.Put("logo.77b1e0", []byte("webp bytes")))

	t.Run("resolves through the manifest", func(t *testing.T) {
		img, err := source.NewManifestedBlobStore(manifest, "icon.png", blobs).Fetch(context.Background())
		require.Nil(t, err)
		assert.Equal(t, source.Image{Data: []byte("png bytes"), Format: "image/png"}, img)
	})
	t.Run("format falls back to the asset name", func(t *testing.T) {
		img, err := source.NewManifestedBlobStore(manifest, "logo.webp", blobs).Fetch(context.Background())
		require.Nil(t, err)
		assert.Equal(t, "image/webp", img.Format)
	})
	t.Run("name missing from manifest", func(t *testing.T) {
		_, err := source.NewManifestedBlobStore(manifest, "missing.png", blobs).Fetch(context.Background())
		assert.True(t, errors.Is(err, source.ErrFetch))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
	t.Run("key missing from store", func(t *testing.T) {
		m := source.Manifest{"icon.png": "icon.000000.png"}
		_, err := source.NewManifestedBlobStore(m, "icon.png", blobs).Fetch(context.Background())
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
	t.Run("bad manifest", func(t *testing.T) {
		_, err := source.LoadManifest(strings.NewReader(`["icon.png"]`))
		assert.NotNil(t, err)
	})
}

func TestFormatFromName(t *testing.T) {
	format, ok := source.FormatFromName("ICON.JPG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", format)
	_, ok = source.FormatFromName("icon")
	assert.False(t, ok)
}
