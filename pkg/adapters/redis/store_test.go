package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pipeview/pkg/adapters/redis"
	"github.com/aretw0/pipeview/pkg/ports"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunSettingsStoreContract(t, store)
}

func TestRedisStore_Keys(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, redis.WithPrefix("test:"))

	require.NoError(t, store.SetHideSubscriptions(ctx, "demo", true))
	require.NoError(t, store.SetStageColors(ctx, "demo", map[string]string{"dev": "#112233"}))

	hide, err := mr.Get("test:demo:hide-subscriptions")
	require.NoError(t, err)
	assert.Equal(t, "true", hide)
	assert.Equal(t, "#112233", mr.HGet("test:demo:stage-colors", "dev"))
}

func TestRedisStore_SetReplacesColors(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	require.NoError(t, store.SetStageColors(ctx, "demo", map[string]string{"dev": "#111111", "qa": "#222222"}))
	require.NoError(t, store.SetStageColors(ctx, "demo", map[string]string{"prod": "#333333"}))

	colors, err := store.StageColors(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"prod": "#333333"}, colors)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, redis.WithTTL(time.Minute))

	require.NoError(t, store.SetHideSubscriptions(ctx, "demo", true))
	require.NoError(t, store.SetStageColors(ctx, "demo", map[string]string{"dev": "#111111"}))

	mr.FastForward(2 * time.Minute)

	hide, err := store.HideSubscriptions(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, hide)

	colors, err := store.StageColors(ctx, "demo")
	require.NoError(t, err)
	assert.Empty(t, colors)
}

func TestRedisStore_InvalidFlag(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t)
	require.NoError(t, mr.Set("pipeview:settings:demo:hide-subscriptions", "maybe"))

	_, err := store.HideSubscriptions(ctx, "demo")
	assert.Error(t, err)
}
