package ports

import "context"

// SettingsStore persists per-project view settings, keyed by project name.
type SettingsStore interface {
	// HideSubscriptions returns false when nothing was stored.
	HideSubscriptions(ctx context.Context, project string) (bool, error)
	SetHideSubscriptions(ctx context.Context, project string, hide bool) error

	// StageColors returns an empty (non-nil) map when nothing was stored.
	StageColors(ctx context.Context, project string) (map[string]string, error)
	SetStageColors(ctx context.Context, project string, colors map[string]string) error
	ClearStageColors(ctx context.Context, project string) error
}
