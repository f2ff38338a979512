package topology

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/aretw0/pipeview/internal/logging"
	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/ports"
)

// Builder runs Build with the per-project settings read from a SettingsStore
// and persists newly assigned colors.
type Builder struct {
	store    ports.SettingsStore
	logger   *slog.Logger
	observer func(time.Duration)
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithObserver registers a callback receiving the duration of every build.
func WithObserver(fn func(time.Duration)) BuilderOption {
	return func(b *Builder) {
		b.observer = fn
	}
}

// NewBuilder creates a Builder backed by store.
func NewBuilder(store ports.SettingsStore, opts ...BuilderOption) *Builder {
	b := &Builder{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build lays out the project's graph using its persisted settings.
func (b *Builder) Build(ctx context.Context, project string, stages []domain.Stage, warehouses []domain.Warehouse) (Result, error) {
	hide, err := b.store.HideSubscriptions(ctx, project)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read hide subscriptions setting: %w", err)
	}
	colors, err := b.store.StageColors(ctx, project)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read stage colors: %w", err)
	}

	start := time.Now()
	res := Build(Input{
		Stages:            stages,
		Warehouses:        warehouses,
		HideSubscriptions: hide,
		Colors:            colors,
	})
	if b.observer != nil {
		b.observer(time.Since(start))
	}

	if !maps.Equal(colors, res.StageColors) {
		if err := b.store.SetStageColors(ctx, project, res.StageColors); err != nil {
			return res, fmt.Errorf("failed to persist stage colors: %w", err)
		}
		b.logger.Debug("Stage colors assigned", "project", project, "stages", len(res.StageColors))
	}
	return res, nil
}

// ReassignColors forgets the persisted colors so the next Build assigns
// them afresh.
func (b *Builder) ReassignColors(ctx context.Context, project string) error {
	if err := b.store.ClearStageColors(ctx, project); err != nil {
		return fmt.Errorf("failed to clear stage colors: %w", err)
	}
	return nil
}

// ToggleHideSubscriptions flips the persisted flag and returns its new value.
func (b *Builder) ToggleHideSubscriptions(ctx context.Context, project string) (bool, error) {
	hide, err := b.store.HideSubscriptions(ctx, project)
	if err != nil {
		return false, fmt.Errorf("failed to read hide subscriptions setting: %w", err)
	}
	if err := b.store.SetHideSubscriptions(ctx, project, !hide); err != nil {
		return hide, fmt.Errorf("failed to store hide subscriptions setting: %w", err)
	}
	return !hide, nil
}
