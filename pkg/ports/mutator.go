package ports

import "context"

// Mutator triggers server-side changes. Their effects come back later as
// watch events.
type Mutator interface {
	ApproveFreight(ctx context.Context, project, stage, freight string) error
	RefreshWarehouse(ctx context.Context, project, warehouse string) error
}
