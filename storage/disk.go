package storage

import (
	"crypto/sha512"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore implements Store. Values live in files named after the hex
// encoding of their key, sharded by the first byte.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Put(key string, value []byte) (err error) {
	valpath := s.pathFor(key)
	err = os.WriteFile(valpath, value, 0600)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("could not write %q: %w", valpath, err)
	}
	if err = os.MkdirAll(filepath.Dir(valpath), 0700); err != nil {
		return fmt.Errorf("could not make dir for %q: %w", valpath, err)
	}
	return os.WriteFile(valpath, value, 0600)
}

func (s *DiskStore) Get(key string) (value []byte, err error) {
	value, err = os.ReadFile(s.pathFor(key))
	if os.IsNotExist(err) {
		err = fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	return
}

func (s *DiskStore) Delete(key string) error {
	err := os.Remove(s.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete %.40q: %w", key, err)
	}
	return nil
}

func (s *DiskStore) pathFor(key string) string {
	b := []byte(key)
	// Prevent ENAMETOOLONG, while retaining low probability of clashes.
	if len(b) > sha512.Size {
		hash := sha512.Sum512(b)
		b = hash[:]
	}
	hex := fmt.Sprintf("%02x", b)
	if len(hex) < 2 {
		hex = "00" + hex
	}
	return filepath.Join(s.dir, hex[:2], hex)
}
