package ports

import (
	"context"

	"github.com/aretw0/pipeview/pkg/domain"
)

// Fetcher performs one-shot reads. Failures are surfaced to the caller;
// implementations do not retry.
type Fetcher interface {
	ListStages(ctx context.Context, project string) ([]domain.Stage, error)
	ListWarehouses(ctx context.Context, project string) ([]domain.Warehouse, error)
	QueryFreight(ctx context.Context, project string) (domain.FreightGroups, error)
	ListPromotions(ctx context.Context, project, stage string) ([]domain.Promotion, error)

	// GetFreight returns domain.ErrNotFound when the freight does not exist.
	GetFreight(ctx context.Context, project, name string) (domain.Freight, error)
}
