package cache

import (
	"context"
	"strings"
	"sync"
)

// MemoryBackend stores entries in-memory. Useful for single runs and tests;
// nothing survives the process.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

// Get returns the entry stored under key.
func (b *MemoryBackend) Get(_ context.Context, key string) (Entry, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.entries[key]
	return entry, ok, nil
}

// Set stores the entry, overwriting any previous value for key.
func (b *MemoryBackend) Set(_ context.Context, key string, entry Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry.Payload = append([]byte(nil), entry.Payload...)
	b.entries[key] = entry
	return nil
}

// Count returns the number of keys with the given prefix.
func (b *MemoryBackend) Count(_ context.Context, prefix string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for k := range b.entries {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}

// Close is a no-op for the in-memory backend.
func (b *MemoryBackend) Close() error { return nil }
