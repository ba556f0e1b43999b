// Package memory provides in-process stores: the client blob store and the
// repositories behind the dev backend.
package memory

import (
	"sync"

	"academy/internal/app/ports"
)

// BlobStore is a map-backed ports.LocalStore. Values are copied on the way in
// and out.
type BlobStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewBlobStore builds an empty store.
func NewBlobStore() *BlobStore {
	return &BlobStore{items: make(map[string][]byte)}
}

// Get returns the blob stored under key.
func (s *BlobStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores blob under key. A nil blob deletes the key.
func (s *BlobStore) Set(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if blob == nil {
		delete(s.items, key)
		return nil
	}
	s.items[key] = append([]byte(nil), blob...)
	return nil
}

// Len reports the number of stored keys.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ ports.LocalStore = (*BlobStore)(nil)
