package cache_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/nicolagi/touchicon/cache"
	"github.com/nicolagi/touchicon/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const key = "http://example.com/apple-touch-icon.png"

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newResponse(cacheControl string) *cache.Response {
	h := make(http.Header)
	h.Set("Content-Type", "image/png")
	if cacheControl != "" {
		h.Set("Cache-Control", cacheControl)
	}
	return &cache.Response{Status: http.StatusOK, Header: h, Body: []byte("\x89PNG")}
}

func TestStoreCache(t *testing.T) {
	t.Run("miss on empty cache", func(t *testing.T) {
		c := cache.New(storage.NewInMemoryStore())
		r, err := c.Get(key)
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, cache.ErrMiss))
	})
	t.Run("what you put is what you get", func(t *testing.T) {
		c := cache.New(storage.NewInMemoryStore())
		before := newResponse("s-maxage=10")
		before.Header.Add("Vary", "Accept")
		before.Header.Add("Vary", "Origin")
		require.Nil(t, c.Put(key, before))
		after, err := c.Get(key)
		require.Nil(t, err)
		assert.Equal(t, before, after)
	})
	t.Run("expires after s-maxage", func(t *testing.T) {
		clk := &clock{t: time.Unix(1700000000, 0)}
		c := cache.New(storage.NewInMemoryStore()).WithClock(clk.now)
		require.Nil(t, c.Put(key, newResponse("s-maxage=10")))
		clk.advance(9 * time.Second)
		_, err := c.Get(key)
		assert.Nil(t, err)
		clk.advance(time.Second)
		_, err = c.Get(key)
		assert.True(t, errors.Is(err, cache.ErrMiss))
	})
	t.Run("s-maxage wins over max-age", func(t *testing.T) {
		clk := &clock{t: time.Unix(1700000000, 0)}
		c := cache.New(storage.NewInMemoryStore()).WithClock(clk.now)
		require.Nil(t, c.Put(key, newResponse("max-age=3600, s-maxage=5")))
		clk.advance(6 * time.Second)
		_, err := c.Get(key)
		assert.True(t, errors.Is(err, cache.ErrMiss))
	})
	t.Run("max-age alone", func(t *testing.T) {
		clk := &clock{t: time.Unix(1700000000, 0)}
		c := cache.New(storage.NewInMemoryStore()).WithClock(clk.now)
		require.Nil(t, c.Put(key, newResponse("public, max-age=60")))
		clk.advance(59 * time.Second)
		_, err := c.Get(key)
		assert.Nil(t, err)
	})
	t.Run("no directive never expires", func(t *testing.T) {
		clk := &clock{t: time.Unix(1700000000, 0)}
		c := cache.New(storage.NewInMemoryStore()).WithClock(clk.now)
		require.Nil(t, c.Put(key, newResponse("")))
		clk.advance(365 * 24 * time.Hour)
		_, err := c.Get(key)
		assert.Nil(t, err)
	})
	t.Run("no-store is not stored", func(t *testing.T) {
		store := storage.NewInMemoryStore()
		c := cache.New(store)
		require.Nil(t, c.Put(key, newResponse("no-store")))
		assert.Equal(t, 0, store.Len())
	})
	t.Run("corrupt entries are errors, not misses", func(t *testing.T) {
		store := storage.NewInMemoryStore()
		require.Nil(t, store.Put(key, []byte{1, 0, 42}))
		_, err := cache.New(store).Get(key)
		require.NotNil(t, err)
		assert.False(t, errors.Is(err, cache.ErrMiss))
	})
	t.Run("expired entries are deleted when read", func(t *testing.T) {
		clk := &clock{t: time.Unix(1700000000, 0)}
		store := storage.NewInMemoryStore()
		c := cache.New(store).WithClock(clk.now)
		require.Nil(t, c.Put(key, newResponse("s-maxage=10")))
		clk.advance(time.Minute)
		_, err := c.Get(key)
		assert.True(t, errors.Is(err, cache.ErrMiss))
		assert.Equal(t, 0, store.Len())
	})
	t.Run("entry count stays bounded over distinct urls", func(t *testing.T) {
		clk := &clock{t: time.Unix(1700000000, 0)}
		store, err := storage.NewLRUStore(64)
		require.Nil(t, err)
		c := cache.New(store).WithClock(clk.now)
		for i := 0; i < 500; i++ {
			k := fmt.Sprintf("http://example.com/apple-touch-icon-1x1.png?n=%d", i)
			require.Nil(t, c.Put(k, newResponse("s-maxage=10")))
		}
		assert.Equal(t, 64, store.Len())
		clk.advance(time.Hour)
		for i := 436; i < 500; i++ {
			_, err := c.Get(fmt.Sprintf("http://example.com/apple-touch-icon-1x1.png?n=%d", i))
			assert.True(t, errors.Is(err, cache.ErrMiss))
		}
		assert.Equal(t, 0, store.Len())
	})
	t.Run("disk backed", func(t *testing.T) {
		c := cache.New(storage.NewDiskStore(t.TempDir()))
		require.Nil(t, c.Put(key, newResponse("s-maxage=10")))
		r, err := c.Get(key)
		require.Nil(t, err)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
	})
}

func TestNop(t *testing.T) {
	var c cache.Nop
	require.Nil(t, c.Put(key, newResponse("")))
	_, err := c.Get(key)
	assert.True(t, errors.Is(err, cache.ErrMiss))
}
