// Package pebble persists local blobs (chat transcripts, the session token)
// in an embedded Pebble database.
package pebble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pebbledb "github.com/cockroachdb/pebble"

	"academy/internal/app/ports"
)

const keyPrefix = "blob:"

// Store implements ports.LocalStore on Pebble.
type Store struct {
	db *pebbledb.DB
}

// Open creates the directory if needed and opens the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("pebble: create dir: %w", err)
	}
	db, err := pebbledb.Open(path, &pebbledb.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns a copy of the blob stored under key.
func (s *Store) Get(key string) ([]byte, bool, error) {
	v, closer, err := s.db.Get([]byte(keyPrefix + key))
	if errors.Is(err, pebbledb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebble: get %s: %w", key, err)
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set writes blob synchronously. A nil blob deletes the key.
func (s *Store) Set(key string, blob []byte) error {
	k := []byte(keyPrefix + key)
	if blob == nil {
		if err := s.db.Delete(k, pebbledb.Sync); err != nil {
			return fmt.Errorf("pebble: delete %s: %w", key, err)
		}
		return nil
	}
	if err := s.db.Set(k, blob, pebbledb.Sync); err != nil {
		return fmt.Errorf("pebble: set %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix.
func (s *Store) Keys(prefix string) ([]string, error) {
	lower := []byte(keyPrefix + prefix)
	it, err := s.db.NewIter(&pebbledb.IterOptions{LowerBound: lower, UpperBound: upperBound(lower)})
	if err != nil {
		return nil, fmt.Errorf("pebble: iterate: %w", err)
	}
	defer it.Close()
	var keys []string
	for ok := it.First(); ok; ok = it.Next() {
		keys = append(keys, string(it.Key()[len(keyPrefix):]))
	}
	return keys, it.Error()
}

func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

var _ ports.LocalStore = (*Store)(nil)
