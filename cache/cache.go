// Package cache memoizes rendered icon responses, keyed by request URL.
package cache // import "github.com/nicolagi/touchicon/cache"

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nicolagi/touchicon/bits"
	"github.com/nicolagi/touchicon/storage"
)

var (
	// ErrMiss indicates there is no fresh response for a key.
	ErrMiss = errors.New("cache miss")

	errCorrupt = errors.New("corrupt cache entry")
)

const entryVersion = 1

// Response is a cached HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

type Cache interface {
	// Get should return ErrMiss if there is no fresh response for the key.
	Get(key string) (*Response, error)
	Put(key string, r *Response) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(key string) (*Response, error) {
	return nil, fmt.Errorf("%.40q: %w", key, ErrMiss)
}

func (Nop) Put(string, *Response) error {
	return nil
}

// StoreCache keeps responses in a storage.Store. A response expires after the
// s-maxage (or max-age) of its Cache-Control header, counted from when it was
// put. Responses with neither never expire; no-store responses are not kept.
//
// Expired entries are deleted when next read, if the store is a
// storage.Deleter. Entries that are never read again are only reclaimed by
// a bounded store, such as storage.LRUStore.
type StoreCache struct {
	store storage.Store
	now   func() time.Time
}

func New(store storage.Store) *StoreCache {
	return &StoreCache{store: store, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (c *StoreCache) WithClock(now func() time.Time) *StoreCache {
	c.now = now
	return c
}

func (c *StoreCache) Get(key string) (*Response, error) {
	b, err := c.store.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%.40q: %w", key, ErrMiss)
	}
	if err != nil {
		return nil, err
	}
	stored, r, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("%.40q: %w", key, err)
	}
	if ttl, ok := maxAge(r.Header.Get("Cache-Control")); ok {
		if !c.now().Before(stored.Add(ttl)) {
			if d, ok := c.store.(storage.Deleter); ok {
				if err := d.Delete(key); err != nil {
					return nil, fmt.Errorf("%.40q: could not evict expired entry: %w", key, err)
				}
			}
			return nil, fmt.Errorf("%.40q: expired: %w", key, ErrMiss)
		}
	}
	return r, nil
}

func (c *StoreCache) Put(key string, r *Response) error {
	if noStore(r.Header.Get("Cache-Control")) {
		return nil
	}
	return c.store.Put(key, encode(c.now(), r))
}

func encode(stored time.Time, r *Response) []byte {
	b := make([]byte, 0, 64+len(r.Body))
	b = bits.Append16(b, entryVersion)
	b = bits.Append64(b, uint64(stored.UnixNano()))
	b = bits.Append16(b, uint16(r.Status))
	names := make([]string, 0, len(r.Header))
	var count int
	for name, values := range r.Header {
		names = append(names, name)
		count += len(values)
	}
	sort.Strings(names)
	b = bits.Append16(b, uint16(count))
	for _, name := range names {
		for _, value := range r.Header[name] {
			b = bits.Appends(b, name)
			b = bits.Appends(b, value)
		}
	}
	return bits.Appendb(b, r.Body)
}

func decode(b []byte) (time.Time, *Response, error) {
	rd := bits.NewReader(b)
	if v := rd.Get16(); v != entryVersion {
		return time.Time{}, nil, fmt.Errorf("version %d: %w", v, errCorrupt)
	}
	stored := time.Unix(0, int64(rd.Get64()))
	r := &Response{
		Status: int(rd.Get16()),
		Header: make(http.Header),
	}
	for n := rd.Get16(); n > 0 && rd.Err() == nil; n-- {
		name := rd.Gets()
		r.Header.Add(name, rd.Gets())
	}
	r.Body = rd.Getb()
	if err := rd.Err(); err != nil {
		return time.Time{}, nil, fmt.Errorf("%v: %w", err, errCorrupt)
	}
	return stored, r, nil
}

func directives(cacheControl string) map[string]string {
	d := make(map[string]string)
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value := part, ""
		if i := strings.IndexByte(part, '='); i >= 0 {
			name, value = part[:i], strings.Trim(part[i+1:], `"`)
		}
		d[strings.ToLower(name)] = value
	}
	return d
}

// Shared caches prefer s-maxage over max-age.
func maxAge(cacheControl string) (time.Duration, bool) {
	d := directives(cacheControl)
	for _, name := range []string{"s-maxage", "max-age"} {
		if v, ok := d[name]; ok {
			secs, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				continue
			}
			return time.Duration(secs) * time.Second, true
		}
	}
	return 0, false
}

func noStore(cacheControl string) bool {
	_, ok := directives(cacheControl)["no-store"]
	return ok
}
