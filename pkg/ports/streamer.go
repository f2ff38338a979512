package ports

import (
	"context"

	"github.com/aretw0/pipeview/pkg/domain"
)

// Streamer opens watch streams. A stream yields events until ctx is done, in
// which case the channel is closed. A transport failure is delivered as a
// final domain.EventError event before the channel closes. Reconnection is
// left to the caller.
type Streamer interface {
	WatchStages(ctx context.Context, project string) (<-chan domain.Event[domain.Stage], error)
	WatchWarehouses(ctx context.Context, project string) (<-chan domain.Event[domain.Warehouse], error)
	WatchPromotions(ctx context.Context, project, stage string) (<-chan domain.Event[domain.Promotion], error)
}
