package testhelpers

import (
	"context"
	"sync"
)

// MemoryImageStore collects uploads in memory for tests.
type MemoryImageStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Objects: make(map[string][]byte)}
}

func (s *MemoryImageStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = data
	return "https://images.test/" + key, nil
}
