package main

import (
	"os"

	"github.com/rogpeppe/rjson"
)

type storeConfig struct {
	// One of "memory", "disk", "bolt", "s3", "dino" (a blobserver), or
	// "none" where a store is optional.
	Type string `json:"type"`

	// Property for "memory" type. Zero means unbounded, which only makes
	// sense for blobs.
	MaxEntries int `json:"max_entries"`

	// Properties for "disk" and "bolt" types.
	Path   string `json:"path"`
	Bucket string `json:"bucket"`

	// Properties for "dino" type.
	Address string `json:"address"`

	// Properties for "s3" type. Bucket is shared with "bolt".
	Profile string `json:"profile"`
	Region  string `json:"region"`
	Prefix  string `json:"prefix"`

	// If set, a disk store in this directory fronts the "s3" or "dino" store.
	CacheDir string `json:"cache_dir"`
}

type config struct {
	Listen  string `json:"listen"`
	Debug   bool   `json:"debug"`
	LogPath string `json:"log_path"`

	Cache storeConfig `json:"cache"`

	Source struct {
		// One of "embedded", "url", "blobstore".
		Type string `json:"type"`

		// Properties for "url" type.
		URL            string  `json:"url"`
		TimeoutSeconds int     `json:"timeout_seconds"`
		RatePerSecond  float64 `json:"rate_per_second"`
		RateBurst      int     `json:"rate_burst"`

		// Properties for "blobstore" type.
		Manifest string      `json:"manifest"`
		Name     string      `json:"name"`
		Blobs    storeConfig `json:"blobs"`
	} `json:"source"`
}

// Rendered icons are at most a few hundred kilobytes.
const defaultCacheEntries = 1024

func loadConfig(pathname string) (*config, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var c *config
	err = rjson.NewDecoder(f).Decode(&c)
	if err == nil && c == nil {
		c = new(config)
	}
	return c, err
}

func (c *config) applyDefaultsForMissingProperties() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	if c.Cache.Type == "memory" && c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = defaultCacheEntries
	}
	if c.Cache.Bucket == "" {
		c.Cache.Bucket = "responses"
	}
	if c.Cache.Path == "" {
		switch c.Cache.Type {
		case "disk":
			c.Cache.Path = "$HOME/lib/touchicon/cache"
		case "bolt":
			c.Cache.Path = "$HOME/lib/touchicon/touchicon.db"
		}
	}
	if c.Source.Type == "" {
		c.Source.Type = "embedded"
		if os.Getenv("SOURCE_IMAGE_URL") != "" {
			c.Source.Type = "url"
		}
	}
	if c.Source.URL == "" {
		c.Source.URL = os.Getenv("SOURCE_IMAGE_URL")
	}
	if c.Source.TimeoutSeconds == 0 {
		c.Source.TimeoutSeconds = 10
	}
	if c.Source.Name == "" {
		c.Source.Name = "icon.png"
	}
	if c.Source.Blobs.Type == "" {
		c.Source.Blobs.Type = "disk"
	}
	if c.Source.Blobs.Path == "" {
		switch c.Source.Blobs.Type {
		case "disk":
			c.Source.Blobs.Path = "$HOME/lib/touchicon/blobs"
		case "bolt":
			c.Source.Blobs.Path = "$HOME/lib/touchicon/touchicon.db"
		}
	}
	if c.Source.Blobs.Bucket == "" && c.Source.Blobs.Type == "bolt" {
		c.Source.Blobs.Bucket = "blobs"
	}
}
