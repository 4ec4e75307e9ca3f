// Package store provides durable homes for the agent's learning snapshot
// and the product's thin key-value analytics counters. Every backend is a
// best-effort collaborator: callers are expected to swallow errors and keep
// playing from in-memory state.
package store

import (
	"context"
	"sync"
)

// StateStore persists one opaque learning-state blob.
type StateStore interface {
	// Load returns the stored blob. ok is false when nothing was saved yet.
	Load(ctx context.Context) (blob []byte, ok bool, err error)
	// Save replaces the stored blob.
	Save(ctx context.Context, blob []byte) error
	Close() error
}

// Analytics is the product's key-value counter surface.
type Analytics interface {
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, value int64) error
	Incr(ctx context.Context, key string) (int64, error)
}

// MemoryStore is an in-process StateStore, the default for tests and for
// hosts that opt out of persistence.
type MemoryStore struct {
	mu   sync.RWMutex
	blob []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(ctx context.Context) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.blob == nil {
		return nil, false, nil
	}
	cp := make([]byte, len(m.blob))
	copy(cp, m.blob)
	return cp, true, nil
}

func (m *MemoryStore) Save(ctx context.Context, blob []byte) error {
	cp := make([]byte, len(blob))
	copy(cp, blob)
	m.mu.Lock()
	m.blob = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// MemoryAnalytics is an in-process Analytics implementation.
type MemoryAnalytics struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryAnalytics returns an empty counter set.
func NewMemoryAnalytics() *MemoryAnalytics {
	return &MemoryAnalytics{counters: make(map[string]int64)}
}

func (m *MemoryAnalytics) Get(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}

func (m *MemoryAnalytics) Set(ctx context.Context, key string, value int64) error {
	m.mu.Lock()
	m.counters[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryAnalytics) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}
