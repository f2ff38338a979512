package cache

import (
	"sync"
	"sync/atomic"

	"github.com/aretw0/pipeview/pkg/domain"
)

// Reader is the read side of a Cache. Readers never mutate the cache.
type Reader[T domain.Object] interface {
	Snapshot() *Snapshot[T]
}

// Cache publishes snapshots of an ordered collection to concurrent readers.
// Only one writer may call Publish at a time.
type Cache[T domain.Object] struct {
	current atomic.Pointer[Snapshot[T]]

	mu        sync.Mutex
	listeners map[int]func(*Snapshot[T])
	nextID    int
}

// New creates an empty cache.
func New[T domain.Object]() *Cache[T] {
	c := &Cache[T]{listeners: make(map[int]func(*Snapshot[T]))}
	c.current.Store(newSnapshot[T](nil, 0))
	return c
}

// Snapshot returns the latest published snapshot. It is never nil.
func (c *Cache[T]) Snapshot() *Snapshot[T] {
	return c.current.Load()
}

// Publish atomically replaces the visible contents with the values of m and
// notifies listeners. It returns the published snapshot.
func (c *Cache[T]) Publish(m *OrderedMap[T]) *Snapshot[T] {
	snap := c.Store(m)
	c.Notify(snap)
	return snap
}

// Store atomically replaces the visible contents with the values of m
// without notifying listeners. Callers pass the result to Notify.
func (c *Cache[T]) Store(m *OrderedMap[T]) *Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := newSnapshot(m.Values(), c.current.Load().Revision()+1)
	c.current.Store(snap)
	return snap
}

// Notify runs the registered listeners with snap.
func (c *Cache[T]) Notify(snap *Snapshot[T]) {
	c.mu.Lock()
	listeners := make([]func(*Snapshot[T]), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// OnPublish registers fn to run on each Publish or Notify. The returned func
// removes it.
func (c *Cache[T]) OnPublish(fn func(*Snapshot[T])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}
