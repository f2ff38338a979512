package domain

import "fmt"

// EventType is the kind of change carried by a watch Event.
type EventType string

const (
	EventAdded    EventType = "ADDED"
	EventModified EventType = "MODIFIED"
	EventDeleted  EventType = "DELETED"
	// EventError terminates a stream; Err carries the cause.
	EventError EventType = "ERROR"
)

// Event is a single change notification delivered by a watch stream.
type Event[T Object] struct {
	Type   EventType `json:"type"`
	Object T         `json:"object"`
	Err    error     `json:"-"`
}

// Added builds an ADDED event.
func Added[T Object](obj T) Event[T] {
	return Event[T]{Type: EventAdded, Object: obj}
}

// Modified builds a MODIFIED event.
func Modified[T Object](obj T) Event[T] {
	return Event[T]{Type: EventModified, Object: obj}
}

// Deleted builds a DELETED event.
func Deleted[T Object](obj T) Event[T] {
	return Event[T]{Type: EventDeleted, Object: obj}
}

// Failed builds an ERROR event.
func Failed[T Object](err error) Event[T] {
	return Event[T]{Type: EventError, Err: err}
}

func (e Event[T]) String() string {
	if e.Type == EventError {
		return fmt.Sprintf("%s(%v)", e.Type, e.Err)
	}
	return fmt.Sprintf("%s(%s)", e.Type, e.Object.GetName())
}
