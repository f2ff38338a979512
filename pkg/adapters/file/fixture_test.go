package file_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pipeview/pkg/adapters/file"
	"github.com/aretw0/pipeview/pkg/adapters/memory"
	"github.com/aretw0/pipeview/pkg/domain"
)

func TestLoad(t *testing.T) {
	fx, err := file.Load(filepath.Join("testdata", "demo.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "demo", fx.Project)
	require.Len(t, fx.Stages, 3)
	assert.Equal(t, "main", fx.Stages[0].Spec.Subscriptions.Warehouse)
	assert.Equal(t, []string{"qa"}, fx.Stages[2].UpstreamNames())
	assert.Equal(t, "4f1c2d9e7a", fx.Stages[0].CurrentFreightName())

	require.Len(t, fx.Freight, 1)
	assert.Equal(t, "fluffy-otter", fx.Freight[0].Alias)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), fx.Freight[0].CreationTimestamp.UTC())

	require.Len(t, fx.Promotions, 1)
	p := fx.Promotions[0]
	assert.Equal(t, domain.PromotionPhaseSucceeded, p.Phase())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC), p.CreationTimestamp.UTC())
	actor, ok := p.Annotation(domain.AnnotationCreateActor)
	assert.True(t, ok)
	assert.Equal(t, "email:jane@example.com", actor)
}

func TestParse_Errors(t *testing.T) {
	_, err := file.Parse([]byte("stages: []"))
	assert.ErrorIs(t, err, file.ErrNoProject)

	_, err = file.Parse([]byte("project: x\nunknown: 1"))
	assert.Error(t, err)

	_, err = file.Parse([]byte("project: [unterminated"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	fixtures, err := file.LoadPath("testdata")
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	assert.Equal(t, "demo", fixtures[0].Project)
	assert.Equal(t, "other", fixtures[1].Project)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	fx, err := file.Load(filepath.Join("testdata", "demo.yaml"))
	require.NoError(t, err)

	src := memory.NewSource()
	fx.Seed(src)

	stages, err := src.ListStages(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, stages, 3)

	promos, err := src.ListPromotions(ctx, "demo", "dev")
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.NotEmpty(t, promos[0].UID)
}
