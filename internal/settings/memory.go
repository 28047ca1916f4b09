package settings

import (
	"context"
	"sync"
)

// Memory keeps preferences in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

// Read returns a copy of the map stored under key.
func (m *Memory) Read(_ context.Context, key string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.data[key]), nil
}

// Write replaces the map stored under key.
func (m *Memory) Write(_ context.Context, key string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = clone(values)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
