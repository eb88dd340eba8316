package main

import (
	"os"

	"github.com/rogpeppe/rjson"
)

type config struct {
	BlobServer string `json:"blob_server"`
	Debug      bool   `json:"debug"`

	// Either "disk" (the default) or "bolt".
	Type string `json:"type"`
	Path string `json:"path"`
}

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
	if c.BlobServer == "" {
		c.BlobServer = ":3003"
	}
	if c.Type == "" {
		c.Type = "disk"
	}
	if c.Path == "" {
		switch c.Type {
		case "bolt":
			c.Path = "$HOME/lib/touchicon/blobs.db"
		default:
			c.Path = "$HOME/lib/touchicon/blobs"
		}
	}
}
