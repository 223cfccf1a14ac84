package storage

import (
	"context"
	"slices"
	"sync"

	"event-planner/core"
)

var _ core.CacheStorage = (*MemoryStorage)(nil)

type MemoryStorage struct {
	mu    sync.Mutex
	data  []byte
	found bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Get(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.data), s.found, nil
}

func (s *MemoryStorage) Set(_ context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = slices.Clone(blob)
	s.found = true

	return nil
}
