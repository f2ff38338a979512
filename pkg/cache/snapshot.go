package cache

import "github.com/aretw0/pipeview/pkg/domain"

// Snapshot is an immutable, ordered view of a cache at one revision.
type Snapshot[T domain.Object] struct {
	items    []T
	index    map[string]int
	revision uint64
}

func newSnapshot[T domain.Object](items []T, revision uint64) *Snapshot[T] {
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.GetName()] = i
	}
	return &Snapshot[T]{items: items, index: index, revision: revision}
}

// Items returns a copy of the entries in order.
func (s *Snapshot[T]) Items() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Get looks an entry up by name.
func (s *Snapshot[T]) Get(name string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	i, ok := s.index[name]
	if !ok {
		return zero, false
	}
	return s.items[i], true
}

// Len returns the number of entries.
func (s *Snapshot[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Names returns the entry names in order.
func (s *Snapshot[T]) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.items))
	for i, item := range s.items {
		names[i] = item.GetName()
	}
	return names
}

// Revision increases by one on every publish.
func (s *Snapshot[T]) Revision() uint64 {
	if s == nil {
		return 0
	}
	return s.revision
}
