package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicolagi/touchicon/cache"
	"github.com/nicolagi/touchicon/source"
	"github.com/nicolagi/touchicon/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	pathname := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(pathname, []byte(content), 0600))
	return pathname
}

func TestLoadConfig(t *testing.T) {
	t.Run("relaxed json", func(t *testing.T) {
		pathname := writeFile(t, "touchicon.config", `{
			listen: "localhost:9000"
			debug: true
			cache: {type: "none"}
			source: {
				type: "url"
				url: "https://static.example.com/icon.png"
				rate_per_second: 2.5
			}
		}`)
		c, err := loadConfig(pathname)
		require.Nil(t, err)
		assert.Equal(t, "localhost:9000", c.Listen)
		assert.True(t, c.Debug)
		assert.Equal(t, "none", c.Cache.Type)
		assert.Equal(t, "url", c.Source.Type)
		assert.Equal(t, 2.5, c.Source.RatePerSecond)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestApplyDefaults(t *testing.T) {
	t.Run("empty configuration", func(t *testing.T) {
		t.Setenv("SOURCE_IMAGE_URL", "")
		var c config
		c.applyDefaultsForMissingProperties()
		assert.Equal(t, ":8080", c.Listen)
		assert.Equal(t, "memory", c.Cache.Type)
		assert.Equal(t, 1024, c.Cache.MaxEntries)
		assert.Equal(t, "embedded", c.Source.Type)
		assert.Equal(t, 10, c.Source.TimeoutSeconds)
		assert.Equal(t, "icon.png", c.Source.Name)
	})
	t.Run("source url from the environment", func(t *testing.T) {
		t.Setenv("SOURCE_IMAGE_URL", "https://static.example.com/icon.png")
		var c config
		c.applyDefaultsForMissingProperties()
		assert.Equal(t, "url", c.Source.Type)
		assert.Equal(t, "https://static.example.com/icon.png", c.Source.URL)
	})
	t.Run("configured url wins", func(t *testing.T) {
		t.Setenv("SOURCE_IMAGE_URL", "https://static.example.com/icon.png")
		var c config
		c.Source.Type = "url"
		c.Source.URL = "https://other.example.com/logo.png"
		c.applyDefaultsForMissingProperties()
		assert.Equal(t, "https://other.example.com/logo.png", c.Source.URL)
	})
}

func TestResources(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		res := newResources()
		defer res.close()
		c, err := res.cache(storeConfig{Type: "none"})
		require.Nil(t, err)
		assert.Equal(t, cache.Nop{}, c)
	})
	t.Run("cache and blobs share a bolt database", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "touchicon.db")
		res := newResources()
		defer res.close()
		_, err := res.cache(storeConfig{Type: "bolt", Path: dbPath, Bucket: "responses"})
		require.Nil(t, err)
		blobs, err := res.store(storeConfig{Type: "bolt", Path: dbPath, Bucket: "blobs"})
		require.Nil(t, err)
		assert.Len(t, res.dbs, 1)
		require.Nil(t, blobs.Put("icon.png", []byte("png")))
	})
	t.Run("default memory cache is bounded", func(t *testing.T) {
		var c config
		c.applyDefaultsForMissingProperties()
		res := newResources()
		s, err := res.store(c.Cache)
		require.Nil(t, err)
		lru, ok := s.(*storage.LRUStore)
		require.True(t, ok)
		for i := 0; i < 2*defaultCacheEntries; i++ {
			require.Nil(t, lru.Put(fmt.Sprintf("http://icons.example.com/apple-touch-icon.png?n=%d", i), []byte("png")))
		}
		assert.Equal(t, defaultCacheEntries, lru.Len())
	})
	t.Run("unknown store type", func(t *testing.T) {
		res := newResources()
		_, err := res.store(storeConfig{Type: "floppy"})
		assert.NotNil(t, err)
	})
	t.Run("remote stores can be fronted by disk", func(t *testing.T) {
		res := newResources()
		s, err := res.store(storeConfig{Type: "dino", Address: "localhost:3003", CacheDir: t.TempDir()})
		require.Nil(t, err)
		_, ok := s.(storage.Paired)
		assert.True(t, ok)
	})
	t.Run("blobstore source", func(t *testing.T) {
		blobDir := t.TempDir()
		require.Nil(t, storage.NewDiskStore(blobDir).Put("icon.1a2b3c.png", []byte("png bytes")))
		var c config
		c.Source.Type = "blobstore"
		c.Source.Manifest = writeFile(t, "manifest.json", `{"icon.png": "icon.1a2b3c.png"}`)
		c.Source.Blobs = storeConfig{Type: "disk", Path: blobDir}
		c.applyDefaultsForMissingProperties()
		res := newResources()
		src, err := res.source(&c)
		require.Nil(t, err)
		img, err := src.Fetch(context.Background())
		require.Nil(t, err)
		assert.Equal(t, source.Image{Data: []byte("png bytes"), Format: "image/png"}, img)
	})
	t.Run("url source needs a url", func(t *testing.T) {
		t.Setenv("SOURCE_IMAGE_URL", "")
		var c config
		c.Source.Type = "url"
		c.applyDefaultsForMissingProperties()
		_, err := newResources().source(&c)
		assert.NotNil(t, err)
	})
	t.Run("unknown source type", func(t *testing.T) {
		var c config
		c.Source.Type = "carrier-pigeon"
		_, err := newResources().source(&c)
		assert.NotNil(t, err)
	})
}
