package memory

import (
	"context"
	"sync"

	"github.com/aretw0/pipeview/pkg/domain"
)

// hub fans events of one kind out to the watchers of a scope.
type hub[T domain.Object] struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber[T]]struct{}
	buffer int
}

type subscriber[T domain.Object] struct {
	ch  chan domain.Event[T]
	ctx context.Context
}

func newHub[T domain.Object](buffer int) *hub[T] {
	return &hub[T]{
		subs:   make(map[string]map[*subscriber[T]]struct{}),
		buffer: buffer,
	}
}

// subscribe returns a channel closed when ctx is done.
func (h *hub[T]) subscribe(ctx context.Context, scope string) <-chan domain.Event[T] {
	sub := &subscriber[T]{ch: make(chan domain.Event[T], h.buffer), ctx: ctx}

	h.mu.Lock()
	if h.subs[scope] == nil {
		h.subs[scope] = make(map[*subscriber[T]]struct{})
	}
	h.subs[scope][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subs[scope]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subs, scope)
			}
		}
		close(sub.ch)
	}()
	return sub.ch
}

// publish delivers ev to every watcher of scope, in order. A send blocks
// until the watcher reads or goes away.
func (h *hub[T]) publish(scope string, ev domain.Event[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[scope] {
		select {
		case sub.ch <- ev:
		case <-sub.ctx.Done():
		}
	}
}

// fail terminates every watcher of scope with an ERROR event.
func (h *hub[T]) fail(scope string, err error) {
	h.publish(scope, domain.Failed[T](err))
}

func (h *hub[T]) count(scope string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[scope])
}
