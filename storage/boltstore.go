package storage

import (
	"fmt"

	"github.com/boltdb/bolt"
)

// BoltStore is an implementation of Store whose backend is a bucket in a
// Bolt database. Several stores can share one database using different
// buckets.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

func NewBoltStore(db *bolt.DB, bucket string) (*BoltStore, error) {
	name := []byte(bucket)
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		if err != nil {
			return fmt.Errorf("could not ensure bucket %q exists: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db, bucket: name}, nil
}

func (s *BoltStore) Put(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(s.bucket).Put([]byte(key), value); err != nil {
			return fmt.Errorf("could not put %.40q with %.40q: %w", key, value, err)
		}
		return nil
	})
}

func (s *BoltStore) Get(key string) (value []byte, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%.40q: %w", key, ErrNotFound)
		}
		// Only valid for the life of the transaction.
		value = dup(v)
		return nil
	})
	return value, err
}

func (s *BoltStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(s.bucket).Delete([]byte(key)); err != nil {
			return fmt.Errorf("could not delete %.40q: %w", key, err)
		}
		return nil
	})
}
