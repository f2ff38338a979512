package memory

import (
	"context"
	"maps"
	"sync"
)

// Store implements ports.SettingsStore in memory.
// Safe for concurrent use.
type Store struct {
	hide   map[string]bool
	colors map[string]map[string]string
	mu     sync.RWMutex
}

// NewStore creates a new in-memory settings store.
func NewStore() *Store {
	return &Store{
		hide:   make(map[string]bool),
		colors: make(map[string]map[string]string),
	}
}

// HideSubscriptions returns the stored flag, false by default.
func (s *Store) HideSubscriptions(ctx context.Context, project string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hide[project], nil
}

// SetHideSubscriptions stores the flag.
func (s *Store) SetHideSubscriptions(ctx context.Context, project string, hide bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hide[project] = hide
	return nil
}

// StageColors returns a copy of the stored assignment.
func (s *Store) StageColors(ctx context.Context, project string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.colors[project]))
	maps.Copy(out, s.colors[project])
	return out, nil
}

// SetStageColors replaces the stored assignment with a copy of colors.
func (s *Store) SetStageColors(ctx context.Context, project string, colors map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[project] = maps.Clone(colors)
	return nil
}

// ClearStageColors forgets the assignment.
func (s *Store) ClearStageColors(ctx context.Context, project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.colors, project)
	return nil
}
