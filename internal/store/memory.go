package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps collections in process memory. Suitable for tests
// and single-node demo deployments.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Collection][]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[Collection][]json.RawMessage),
	}
}

// Get returns a copy of the collection's records.
func (s *MemoryStore) Get(ctx context.Context, collection Collection) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.collections[collection]
	out := make([]json.RawMessage, len(records))
	copy(out, records)
	return out, nil
}

// Put replaces the collection's records.
func (s *MemoryStore) Put(ctx context.Context, collection Collection, records []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]json.RawMessage, len(records))
	copy(stored, records)
	s.collections[collection] = stored
	return nil
}
