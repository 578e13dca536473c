package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/storefront/internal/port"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var (
	_ port.KVStore       = (*MemoryRepository)(nil)
	_ port.KVBatchClearer = (*MemoryRepository)(nil)
)

func NewMemory() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, value...), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = append([]byte{}, value...)
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key)
	return nil
}

// ClearAll removes keys under one lock and reports how many existed.
func (r *MemoryRepository) ClearAll(_ context.Context, keys ...string) (int64, error) {
	for _, key := range keys {
		if key == "" {
			return 0, fmt.Errorf("key is empty")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if _, ok := r.entries[key]; ok {
			delete(r.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
