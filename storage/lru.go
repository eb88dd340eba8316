package storage

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore is an in-memory Store holding at most a fixed number of pairs.
// Putting a new key into a full store evicts the least recently used one.
type LRUStore struct {
	cache *lru.Cache[string, []byte]
}

func NewLRUStore(size int) (*LRUStore, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("could not create lru store of size %d: %w", size, err)
	}
	return &LRUStore{cache: c}, nil
}

func (s *LRUStore) Put(key string, value []byte) error {
	s.cache.Add(key, dup(value))
	return nil
}

func (s *LRUStore) Get(key string) ([]byte, error) {
	value, ok := s.cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	return dup(value), nil
}

func (s *LRUStore) Delete(key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *LRUStore) Len() int {
	return s.cache.Len()
}
