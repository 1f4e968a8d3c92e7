package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps entries in a map guarded by a RWMutex.
//
// Used for development, tests and the default `memory` driver. Data is
// lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get returns a copy of the value at key, or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key.String()]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(value), nil
}

// Set stores a copy of value, so callers may reuse their buffer.
func (m *MemoryStore) Set(ctx context.Context, key Key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key.String()] = clone(value)
	return nil
}

// Delete removes key. A missing key is not an error.
func (m *MemoryStore) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key.String())
	return nil
}

// List returns copies of the entries under prefix, sorted by key.
func (m *MemoryStore) List(ctx context.Context, prefix Key) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := prefix.Prefix()

	m.mu.RLock()
	entries := make([]Entry, 0)
	for k, v := range m.entries {
		if strings.HasPrefix(k, p) {
			entries = append(entries, Entry{Key: k, Value: clone(v)})
		}
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Ping only reports a canceled context.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op; the map stays usable.
func (m *MemoryStore) Close() error {
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
