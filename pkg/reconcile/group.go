package reconcile

import "sync"

// Canceler is implemented by every Watcher.
type Canceler interface {
	Cancel()
}

// Group keeps at most one active watch per key, where a key identifies a
// resource kind and its scope (e.g. "promotions/project/stage").
type Group struct {
	mu      sync.Mutex
	watches map[string]Canceler
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{watches: make(map[string]Canceler)}
}

// Key builds a group key from a kind and its scope parts.
func Key(kind string, scope ...string) string {
	k := kind
	for _, s := range scope {
		k += "/" + s
	}
	return k
}

// Replace registers w under key, cancelling the watch it replaces.
func (g *Group) Replace(key string, w Canceler) {
	g.mu.Lock()
	prev := g.watches[key]
	g.watches[key] = w
	g.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}
}

// Cancel stops and forgets the watch registered under key.
func (g *Group) Cancel(key string) {
	g.mu.Lock()
	w := g.watches[key]
	delete(g.watches, key)
	g.mu.Unlock()
	if w != nil {
		w.Cancel()
	}
}

// CancelAll stops every registered watch.
func (g *Group) CancelAll() {
	g.mu.Lock()
	watches := g.watches
	g.watches = make(map[string]Canceler)
	g.mu.Unlock()
	for _, w := range watches {
		w.Cancel()
	}
}

// Len returns the number of registered watches.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.watches)
}
