package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in a map. It backs tests and the CLI's memory
// state backend. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	blobs    map[string][]byte
	versions map[string]uint64
}

var _ Committer = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs:    make(map[string][]byte),
		versions: make(map[string]uint64),
	}
}

func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	// Stored slices are never mutated in place, so sharing them is safe.
	return NewBytesBlob(data), nil
}

func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	owned := bytes.Clone(data)
	if owned == nil {
		owned = []byte{}
	}

	m.mu.Lock()
	m.blobs[name] = owned
	m.mu.Unlock()
	return nil
}

// Commit writes name if version is newer than its last committed version.
func (m *MemoryStore) Commit(_ context.Context, name string, version uint64, data []byte) error {
	owned := bytes.Clone(data)
	if owned == nil {
		owned = []byte{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if last := m.versions[name]; version <= last {
		return fmt.Errorf("%w: %s version %d, last committed %d", ErrConflict, name, version, last)
	}
	m.versions[name] = version
	m.blobs[name] = owned
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.blobs, name)
	m.mu.Unlock()
	return nil
}

// List returns the names starting with prefix, sorted.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := slices.Sorted(maps.Keys(m.blobs))
	return slices.DeleteFunc(names, func(n string) bool {
		return !strings.HasPrefix(n, prefix)
	}), nil
}
