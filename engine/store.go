package engine

import (
	"context"
	"sync"
)

// Cache is the storage primitive behind session state. Implementations must
// be safe for concurrent use by independent sessions.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
}

// MemoryCache keeps values in a mutex-guarded map. It is the default backend
// and loses everything on process exit.
type MemoryCache[S any] struct {
	mu      sync.RWMutex
	entries map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{entries: make(map[string]S)}
}

func (c *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = val
	return nil
}

func (c *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.entries[key]
	return val, ok, nil
}

func (c *MemoryCache[S]) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Store namespaces a Cache so several stores can share one backend without
// key collisions. Keys are explicit session identifiers.
type Store[S any] struct {
	core      Cache[S]
	namespace string
}

func NewStore[S any](core Cache[S], namespace string) Store[S] {
	return Store[S]{core: core, namespace: namespace}
}

func (s Store[S]) key(id string) string {
	return s.namespace + ":" + id
}

func (s Store[S]) Set(ctx context.Context, id string, val S) error {
	return s.core.Set(ctx, s.key(id), val)
}

func (s Store[S]) Get(ctx context.Context, id string) (S, bool, error) {
	return s.core.Get(ctx, s.key(id))
}

func (s Store[S]) Del(ctx context.Context, id string) error {
	return s.core.Del(ctx, s.key(id))
}
