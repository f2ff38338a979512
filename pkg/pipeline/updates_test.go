package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/pipeview/internal/logging"
)

func TestBroadcaster(t *testing.T) {
	b := newBroadcaster(logging.NewNop())
	a, unsubA := b.subscribe()
	c, unsubC := b.subscribe()

	b.broadcast(Update{Project: "demo", Reason: "stages", Revision: 3})

	assert.Equal(t, Update{Project: "demo", Reason: "stages", Revision: 3}, <-a)
	assert.Equal(t, Update{Project: "demo", Reason: "stages", Revision: 3}, <-c)

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open)

	b.broadcast(Update{Project: "demo", Reason: "freight"})
	assert.Equal(t, "freight", (<-c).Reason)
	unsubC()
}

func TestBroadcaster_DropsWhenFull(t *testing.T) {
	b := newBroadcaster(logging.NewNop())
	ch, unsubscribe := b.subscribe()
	defer unsubscribe()

	for i := 0; i < cap(ch)+5; i++ {
		b.broadcast(Update{Revision: uint64(i)})
	}

	assert.Len(t, ch, cap(ch))
	assert.Equal(t, uint64(0), (<-ch).Revision)
}
