package cache

import (
	"slices"

	"github.com/aretw0/pipeview/pkg/domain"
)

// OrderedMap is a map keyed by object name that remembers insertion order.
type OrderedMap[T domain.Object] struct {
	keys  []string
	items map[string]T
}

// NewOrderedMap creates a map seeded with items in order.
// Later duplicates of a name replace the earlier entry in place.
func NewOrderedMap[T domain.Object](items []T) *OrderedMap[T] {
	m := &OrderedMap[T]{
		keys:  make([]string, 0, len(items)),
		items: make(map[string]T, len(items)),
	}
	for _, item := range items {
		m.Upsert(item)
	}
	return m
}

// Upsert replaces the entry with the same name at its current position, or
// appends it. It reports whether the entry was newly inserted.
func (m *OrderedMap[T]) Upsert(item T) bool {
	name := item.GetName()
	_, exists := m.items[name]
	m.items[name] = item
	if !exists {
		m.keys = append(m.keys, name)
	}
	return !exists
}

// Delete removes the entry, keeping the relative order of the others.
func (m *OrderedMap[T]) Delete(name string) bool {
	if _, ok := m.items[name]; !ok {
		return false
	}
	delete(m.items, name)
	if i := slices.Index(m.keys, name); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

// Get returns the entry for name.
func (m *OrderedMap[T]) Get(name string) (T, bool) {
	item, ok := m.items[name]
	return item, ok
}

// Len returns the number of entries.
func (m *OrderedMap[T]) Len() int {
	return len(m.keys)
}

// Values returns the entries in insertion order. The slice is a fresh copy.
func (m *OrderedMap[T]) Values() []T {
	out := make([]T, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.items[k]
	}
	return out
}
