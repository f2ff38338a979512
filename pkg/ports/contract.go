package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSettingsStoreContract runs a suite of tests to verify that a SettingsStore
// implementation adheres to the defined interface contract.
func RunSettingsStoreContract(t *testing.T, store SettingsStore) {
	ctx := context.Background()
	project := "contract-project-" + time.Now().Format("20060102150405")

	t.Run("Defaults", func(t *testing.T) {
		hide, err := store.HideSubscriptions(ctx, "missing-"+project)
		require.NoError(t, err)
		assert.False(t, hide)

		colors, err := store.StageColors(ctx, "missing-"+project)
		require.NoError(t, err)
		assert.NotNil(t, colors)
		assert.Empty(t, colors)
	})

	t.Run("Hide Subscriptions Round Trip", func(t *testing.T) {
		require.NoError(t, store.SetHideSubscriptions(ctx, project, true))
		hide, err := store.HideSubscriptions(ctx, project)
		require.NoError(t, err)
		assert.True(t, hide)

		require.NoError(t, store.SetHideSubscriptions(ctx, project, false))
		hide, err = store.HideSubscriptions(ctx, project)
		require.NoError(t, err)
		assert.False(t, hide)
	})

	t.Run("Stage Colors Round Trip", func(t *testing.T) {
		want := map[string]string{"dev": "#0DADEA", "prod": "#FF9500"}
		require.NoError(t, store.SetStageColors(ctx, project, want))

		got, err := store.StageColors(ctx, project)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		// Mutating the returned map must not leak into the store.
		got["dev"] = "#000000"
		again, err := store.StageColors(ctx, project)
		require.NoError(t, err)
		assert.Equal(t, "#0DADEA", again["dev"])
	})

	t.Run("Clear Stage Colors", func(t *testing.T) {
		require.NoError(t, store.SetStageColors(ctx, project, map[string]string{"dev": "#0DADEA"}))
		require.NoError(t, store.ClearStageColors(ctx, project))

		got, err := store.StageColors(ctx, project)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Projects Are Isolated", func(t *testing.T) {
		other := project + "-other"
		require.NoError(t, store.SetStageColors(ctx, project, map[string]string{"a": "#111111"}))
		require.NoError(t, store.SetStageColors(ctx, other, map[string]string{"b": "#222222"}))
		defer func() {
			_ = store.ClearStageColors(ctx, other)
		}()

		got, err := store.StageColors(ctx, project)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "#111111"}, got)
	})
}
