package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/nicolagi/touchicon/cache"
	"github.com/nicolagi/touchicon/source"
	"github.com/nicolagi/touchicon/storage"
	log "github.com/sirupsen/logrus"
)

// resources opens the stores named in the configuration. A bolt database
// file is opened once even when the cache and the blobs share it.
type resources struct {
	dbs map[string]*bolt.DB
}

func newResources() *resources {
	return &resources{dbs: make(map[string]*bolt.DB)}
}

func (r *resources) boltDB(pathname string) (*bolt.DB, error) {
	pathname = os.ExpandEnv(pathname)
	if db, ok := r.dbs[pathname]; ok {
		return db, nil
	}
	if err := os.MkdirAll(filepath.Dir(pathname), 0700); err != nil {
		return nil, fmt.Errorf("could not ensure directory for %q exists: %w", pathname, err)
	}
	db, err := bolt.Open(pathname, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open database %q: %w", pathname, err)
	}
	r.dbs[pathname] = db
	return db, nil
}

func (r *resources) close() {
	for pathname, db := range r.dbs {
		if err := db.Close(); err != nil {
			log.WithFields(log.Fields{
				"err":  err,
				"path": pathname,
			}).Warn("Could not close boltdb database")
		}
	}
}

func (r *resources) store(c storeConfig) (storage.Store, error) {
	var store storage.Store
	switch c.Type {
	case "memory":
		if c.MaxEntries > 0 {
			lru, err := storage.NewLRUStore(c.MaxEntries)
			if err != nil {
				return nil, err
			}
			store = lru
		} else {
			store = storage.NewInMemoryStore()
		}
	case "disk":
		store = storage.NewDiskStore(os.ExpandEnv(c.Path))
	case "bolt":
		db, err := r.boltDB(c.Path)
		if err != nil {
			return nil, err
		}
		store, err = storage.NewBoltStore(db, c.Bucket)
		if err != nil {
			return nil, fmt.Errorf("could not instantiate boltdb store at %q: %w", c.Path, err)
		}
	case "s3":
		store = storage.NewS3(c.Profile, c.Region, c.Bucket, c.Prefix)
	case "dino":
		store = storage.NewRemoteStore(c.Address)
	default:
		return nil, fmt.Errorf("unknown store type %q", c.Type)
	}
	if c.CacheDir != "" && (c.Type == "s3" || c.Type == "dino") {
		store = storage.NewPaired(storage.NewDiskStore(os.ExpandEnv(c.CacheDir)), store)
	}
	return store, nil
}

func (r *resources) cache(c storeConfig) (cache.Cache, error) {
	if c.Type == "none" {
		return cache.Nop{}, nil
	}
	store, err := r.store(c)
	if err != nil {
		return nil, err
	}
	return cache.New(store), nil
}

func (r *resources) source(c *config) (source.Source, error) {
	switch source.Kind(c.Source.Type) {
	case source.KindEmbedded:
		return source.NewEmbedded(), nil
	case source.KindURL:
		if c.Source.URL == "" {
			return nil, fmt.Errorf("url source needs a url or SOURCE_IMAGE_URL")
		}
		return source.NewRemoteURL(c.Source.URL,
			source.WithTimeout(time.Duration(c.Source.TimeoutSeconds)*time.Second),
			source.WithRateLimit(c.Source.RatePerSecond, c.Source.RateBurst),
		), nil
	case source.KindBlobStore:
		manifest, err := source.LoadManifestFile(os.ExpandEnv(c.Source.Manifest))
		if err != nil {
			return nil, fmt.Errorf("could not load manifest %q: %w", c.Source.Manifest, err)
		}
		blobs, err := r.store(c.Source.Blobs)
		if err != nil {
			return nil, err
		}
		return source.NewManifestedBlobStore(manifest, c.Source.Name, blobs), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", c.Source.Type)
	}
}
