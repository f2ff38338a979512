package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.SettingsStore using Redis.
//
// Each project owns two keys: a string holding the hide-subscriptions flag
// and a hash mapping stage names to colors.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored settings.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "pipeview:settings:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) hideKey(project string) string {
	return s.prefix + project + ":hide-subscriptions"
}

func (s *Store) colorsKey(project string) string {
	return s.prefix + project + ":stage-colors"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// HideSubscriptions returns the stored flag, false when unset.
func (s *Store) HideSubscriptions(ctx context.Context, project string) (bool, error) {
	val, err := s.client.Get(ctx, s.hideKey(project)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from redis: %w", err)
	}

	hide, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid hide-subscriptions value %q: %w", val, err)
	}
	return hide, nil
}

// SetHideSubscriptions stores the flag.
func (s *Store) SetHideSubscriptions(ctx context.Context, project string, hide bool) error {
	if err := s.client.Set(ctx, s.hideKey(project), strconv.FormatBool(hide), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// StageColors returns the stored assignment, empty when unset.
func (s *Store) StageColors(ctx context.Context, project string) (map[string]string, error) {
	colors, err := s.client.HGetAll(ctx, s.colorsKey(project)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	if colors == nil {
		colors = map[string]string{}
	}
	return colors, nil
}

// SetStageColors replaces the stored assignment atomically.
func (s *Store) SetStageColors(ctx context.Context, project string, colors map[string]string) error {
	key := s.colorsKey(project)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(colors) > 0 {
		fields := make([]any, 0, 2*len(colors))
		for stage, color := range colors {
			fields = append(fields, stage, color)
		}
		pipe.HSet(ctx, key, fields...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// ClearStageColors forgets the assignment.
func (s *Store) ClearStageColors(ctx context.Context, project string) error {
	return s.client.Del(ctx, s.colorsKey(project)).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
