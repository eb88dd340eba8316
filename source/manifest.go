package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nicolagi/touchicon/storage"
	"github.com/rogpeppe/rjson"
)

// Manifest maps asset names to the keys they are stored under, typically
// names with a content hash, as in {"icon.png": "icon.4f2a9c.png"}.
type Manifest map[string]string

func LoadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := rjson.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("could not decode manifest: %w", err)
	}
	return m, nil
}

func LoadManifestFile(pathname string) (Manifest, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadManifest(f)
}

// Resolve returns the key for name. Names missing from the manifest are
// reported as storage.ErrNotFound.
func (m Manifest) Resolve(name string) (string, error) {
	key, ok := m[name]
	if !ok {
		return "", fmt.Errorf("%q not in manifest: %w", name, storage.ErrNotFound)
	}
	return key, nil
}

// ManifestedBlobStore reads the image named name from a blob store.
type ManifestedBlobStore struct {
	manifest Manifest
	name     string
	blobs    storage.Store
}

func NewManifestedBlobStore(manifest Manifest, name string, blobs storage.Store) *ManifestedBlobStore {
	return &ManifestedBlobStore{
		manifest: manifest,
		name:     name,
		blobs:    blobs,
	}
}

func (s *ManifestedBlobStore) Fetch(ctx context.Context) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	key, err := s.manifest.Resolve(s.name)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	format, ok := FormatFromName(key)
	if !ok {
		format, ok = FormatFromName(s.name)
	}
	if !ok {
		return Image{}, fmt.Errorf("%w: %q: unknown image extension", ErrFetch, key)
	}
	data, err := s.blobs.Get(key)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %q: %w", ErrFetch, key, err)
	}
	return Image{Data: data, Format: format}, nil
}
