package reconcile

import (
	"github.com/aretw0/pipeview/pkg/cache"
	"github.com/aretw0/pipeview/pkg/domain"
)

// Apply applies a single event to m by identity. It reports whether m changed.
// ADDED and MODIFIED share the same upsert behaviour; ERROR and unknown
// event types are ignored.
func Apply[T domain.Object](m *cache.OrderedMap[T], ev domain.Event[T]) bool {
	switch ev.Type {
	case domain.EventDeleted:
		return m.Delete(ev.Object.GetName())
	case domain.EventAdded, domain.EventModified:
		m.Upsert(ev.Object)
		return true
	default:
		return false
	}
}
