package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps snapshots in process memory. It is safe for concurrent
// use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]fileEntry
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]fileEntry)}
}

// Put stores a copy of data.
func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) (Snapshot, error) {
	snap, err := newSnapshot(name, data)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = fileEntry{Snapshot: snap, Data: slices.Clone(data)}
	return snap, nil
}

// Get returns a copy of the payload.
func (s *MemoryStore) Get(ctx context.Context, name string) (Snapshot, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return Snapshot{}, nil, notFound(name)
	}
	return e.Snapshot, slices.Clone(e.Data), nil
}

// List returns snapshots sorted by name.
func (s *MemoryStore) List(ctx context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.entries))
	for _, name := range slices.Sorted(maps.Keys(s.entries)) {
		out = append(out, s.entries[name].Snapshot)
	}
	return out, nil
}

// Delete removes a snapshot.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return notFound(name)
	}
	delete(s.entries, name)
	return nil
}

// Close does nothing.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
