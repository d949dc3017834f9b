// Package store provides key/value blob persistence for generated
// tiles and region images. Entries are written once on first successful
// generation and are read-only afterwards.
package store

import (
	"sort"
	"strings"
	"sync"
)

// Store is the persistence contract the engine needs: put/get of raw
// bytes under deterministic cache keys, plus prefix listing for
// inventory commands.
type Store interface {
	// Put stores data under key, replacing any previous value.
	Put(key string, data []byte) error

	// Get returns the value for key. The second return is false when
	// the key is absent.
	Get(key string) ([]byte, bool, error)

	// List returns all keys with the given prefix, sorted.
	List(prefix string) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}

// Memory is an in-memory Store used by tests and dry runs.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (m *Memory) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.entries[key] = buf
	return nil
}

// Get returns the value for key, or false if absent.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, true, nil
}

// List returns all keys with the given prefix, sorted.
func (m *Memory) List(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
