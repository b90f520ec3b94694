package graph

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// DefaultCacheSize bounds a MemStore created with a non-positive size.
const DefaultCacheSize = 1024

// MemStore is a bounded in-memory Store. The LRU is internally locked, so a
// MemStore may be shared across goroutines.
type MemStore struct {
	cache *lru.Cache[string, *Graph]
}

// NewMemStore returns a MemStore holding at most size graphs.
func NewMemStore(size int) (*MemStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Graph](size)
	if err != nil {
		return nil, fmt.Errorf("memstore: %w", err)
	}
	return &MemStore{cache: cache}, nil
}

// Put stores a copy of g.
func (m *MemStore) Put(_ context.Context, key string, g *Graph) error {
	m.cache.Add(key, g.Clone())
	return nil
}

// Get returns a copy of the cached graph, or nil if key is absent.
func (m *MemStore) Get(_ context.Context, key string) (*Graph, error) {
	g, ok := m.cache.Get(key)
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

// Len returns the number of cached graphs.
func (m *MemStore) Len() int {
	return m.cache.Len()
}

// Close drops every cached graph.
func (m *MemStore) Close() error {
	m.cache.Purge()
	return nil
}
