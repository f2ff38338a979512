package pipeline

import (
	"log/slog"
	"sync"
)

// Update notifies subscribers that the session's view changed.
type Update struct {
	Project  string `json:"project"`
	Reason   string `json:"reason"`
	Revision uint64 `json:"revision"`
}

// broadcaster fans updates out to subscribers without blocking the writer.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Update]struct{}
	logger      *slog.Logger
}

func newBroadcaster(logger *slog.Logger) *broadcaster {
	return &broadcaster{
		subscribers: make(map[chan Update]struct{}),
		logger:      logger,
	}
}

func (b *broadcaster) subscribe() (<-chan Update, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Update, 16)
	b.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, ch)
			close(ch)
		})
	}
}

func (b *broadcaster) broadcast(u Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- u:
		default:
			// Drop the update if the subscriber is slow; the next one carries a newer revision.
			b.logger.Warn("Update subscriber buffer full, dropping update", "project", u.Project)
		}
	}
}
