package blobstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in a map. Blobs are copied on the way in and out,
// so callers may reuse their slices.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string][]byte{}}
}

// Put stores a copy of data under name.
func (m *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob := slices.Clone(data)

	m.mu.Lock()
	m.blobs[name] = blob
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the blob under name.
func (m *MemoryStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	blob, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("blobstore: %s: %w", name, ErrNotFound)
	}
	return slices.Clone(blob), nil
}

// Delete forgets name.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.blobs, name)
	m.mu.Unlock()
	return nil
}

// List returns the sorted names starting with prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// MemoryVersionLog is an in-process VersionLog.
type MemoryVersionLog struct {
	mu       sync.Mutex
	versions map[string]map[uint64]struct{}
	latest   map[string]uint64
}

// NewMemoryVersionLog creates an empty version log.
func NewMemoryVersionLog() *MemoryVersionLog {
	return &MemoryVersionLog{
		versions: make(map[string]map[uint64]struct{}),
		latest:   make(map[string]uint64),
	}
}

// Latest implements VersionLog.
func (l *MemoryVersionLog) Latest(_ context.Context, key string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.latest[key], nil
}

// Commit implements VersionLog.
func (l *MemoryVersionLog) Commit(_ context.Context, key string, version uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	vs, ok := l.versions[key]
	if !ok {
		vs = make(map[uint64]struct{})
		l.versions[key] = vs
	}
	if _, dup := vs[version]; dup {
		return ErrConflict
	}
	vs[version] = struct{}{}
	l.latest[key] = max(l.latest[key], version)
	return nil
}
