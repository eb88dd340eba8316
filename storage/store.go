// Package storage provides key-value stores used to hold source image blobs
// and cached icon responses. Keys are names, such as the hashed file names
// found in an asset manifest or full request URLs.
package storage // import "github.com/nicolagi/touchicon/storage"

import (
	"errors"
)

// Store represents a key-value store.
type Store interface {
	Put(key string, value []byte) (err error)

	// Get should return ErrNotFound if the key is not in the store.
	Get(key string) (value []byte, err error)
}

// Deleter is implemented by stores that can drop keys. Deleting a missing
// key is not an error.
type Deleter interface {
	Delete(key string) error
}

var (
	// ErrNotFound indicates a key is not in the store.
	ErrNotFound = errors.New("not found")
)

func dup(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
