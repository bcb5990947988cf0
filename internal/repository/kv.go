package repository

import (
	"context"
	"sync"
)

// KeyValueStore is the durable storage the portal state lives in. Entries are
// opaque byte documents addressed by a fixed key; a nil KeyValueStore means no
// persistent storage is available in the current process.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryKeyValueStore keeps entries in process memory. Data does not survive restarts.
type MemoryKeyValueStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryKeyValueStore constructs an empty in-memory store.
func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{entries: make(map[string][]byte)}
}

func (m *MemoryKeyValueStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKeyValueStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
