// Package storage holds the opaque image payload stores. The workflow
// only ever sees a payload reference; these backends resolve it.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// PayloadStore persists raw image bytes and hands back a reference.
type PayloadStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Load(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// MemoryPayloadStore keeps payloads in process memory.
type MemoryPayloadStore struct {
	mu       sync.RWMutex
	payloads map[string][]byte
}

func NewMemoryPayloadStore() *MemoryPayloadStore {
	return &MemoryPayloadStore{payloads: make(map[string][]byte)}
}

func (s *MemoryPayloadStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty payload")
	}
	ref := uuid.NewString()

	s.mu.Lock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.payloads[ref] = stored
	s.mu.Unlock()
	return ref, nil
}

func (s *MemoryPayloadStore) Load(ctx context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.payloads[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("payload %s not found", ref)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryPayloadStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	delete(s.payloads, ref)
	s.mu.Unlock()
	return nil
}
