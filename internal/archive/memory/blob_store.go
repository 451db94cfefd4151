// Package memory stores raw match payloads in-memory for tests. Payloads
// are retained for the life of the process, so it must not back a
// long-running crawl.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// BlobStore keeps payloads in a map and returns pseudo URIs.
type BlobStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{data: make(map[string][]byte)}
}

// Put persists the payload and returns a URI.
func (s *BlobStore) Put(_ context.Context, matchID string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[matchID] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s.json", matchID), nil
}

// Get returns a stored payload, if present.
func (s *BlobStore) Get(matchID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[matchID]
	return data, ok
}
