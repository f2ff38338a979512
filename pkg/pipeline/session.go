package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/pipeview/internal/logging"
	"github.com/aretw0/pipeview/pkg/cache"
	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/interaction"
	"github.com/aretw0/pipeview/pkg/ports"
	"github.com/aretw0/pipeview/pkg/reconcile"
	"github.com/aretw0/pipeview/pkg/topology"
)

// Source is what a Session needs from the API client.
type Source interface {
	ports.Fetcher
	ports.Streamer
	ports.Mutator
}

// Session is the live pipeline view of one project.
type Session struct {
	project  string
	source   Source
	builder  *topology.Builder
	state    *interaction.State
	logger   *slog.Logger
	recorder reconcile.Recorder

	stages     *cache.Cache[domain.Stage]
	warehouses *cache.Cache[domain.Warehouse]
	watches    *reconcile.Group
	updates    *broadcaster

	// seeding suppresses freight refetches while the warehouse seed is published.
	seeding atomic.Bool
	// rebuildMu serializes rebuilds triggered by the stage and warehouse watches.
	rebuildMu sync.Mutex

	mu                sync.RWMutex
	ctx               context.Context
	visible           bool
	result            topology.Result
	freight           domain.FreightGroups
	selectedWarehouse string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRecorder sets the metrics recorder passed to the watchers.
func WithRecorder(r reconcile.Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithGroup shares a watch group between sessions.
func WithGroup(g *reconcile.Group) Option {
	return func(s *Session) {
		s.watches = g
	}
}

// NewSession creates a stopped session. Call Start to fetch and watch.
func NewSession(project string, source Source, builder *topology.Builder, opts ...Option) *Session {
	s := &Session{
		project:    project,
		source:     source,
		builder:    builder,
		state:      interaction.New(),
		logger:     logging.NewNop(),
		stages:     cache.New[domain.Stage](),
		warehouses: cache.New[domain.Warehouse](),
		watches:    reconcile.NewGroup(),
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updates = newBroadcaster(s.logger)

	s.stages.OnPublish(func(snap *cache.Snapshot[domain.Stage]) {
		s.rebuild("stages", snap.Revision())
	})
	s.warehouses.OnPublish(func(snap *cache.Snapshot[domain.Warehouse]) {
		s.rebuild("warehouses", snap.Revision())
		if !s.seeding.Load() {
			go s.refetchFreight(s.context())
		}
	})
	return s
}

// Project returns the project name.
func (s *Session) Project() string {
	return s.project
}

func (s *Session) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

func (s *Session) key(kind string) string {
	return reconcile.Key(kind, s.project)
}

func (s *Session) watchOptions(kind string) []reconcile.Option {
	opts := []reconcile.Option{reconcile.WithKind(kind), reconcile.WithLogger(s.logger)}
	if s.recorder != nil {
		opts = append(opts, reconcile.WithRecorder(s.recorder))
	}
	return opts
}

// Start fetches stages, warehouses and freight, then watches stages and
// warehouses until ctx is done or Stop is called. Any previous watches are
// cancelled first, so the caches restart from the fresh fetch. A failed
// Start leaves the session hidden, so SetVisible(true) retries it.
func (s *Session) Start(ctx context.Context) (err error) {
	s.Stop()
	defer func() {
		if err != nil {
			s.mu.Lock()
			s.visible = false
			s.mu.Unlock()
		}
	}()

	var (
		stages     []domain.Stage
		warehouses []domain.Warehouse
		freight    domain.FreightGroups
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stages, err = s.source.ListStages(gctx, s.project)
		if err != nil {
			return fmt.Errorf("failed to list stages: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		warehouses, err = s.source.ListWarehouses(gctx, s.project)
		if err != nil {
			return fmt.Errorf("failed to list warehouses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		freight, err = s.source.QueryFreight(gctx, s.project)
		if err != nil {
			return fmt.Errorf("failed to query freight: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.ctx = ctx
	s.visible = true
	s.freight = freight
	s.mu.Unlock()

	sw, err := reconcile.Watch(ctx, s.stages, stages, func(ctx context.Context) (<-chan domain.Event[domain.Stage], error) {
		return s.source.WatchStages(ctx, s.project)
	}, s.watchOptions("stages")...)
	if err != nil {
		return err
	}
	s.watches.Replace(s.key("stages"), sw)

	s.seeding.Store(true)
	ww, err := reconcile.Watch(ctx, s.warehouses, warehouses, func(ctx context.Context) (<-chan domain.Event[domain.Warehouse], error) {
		return s.source.WatchWarehouses(ctx, s.project)
	}, s.watchOptions("warehouses")...)
	s.seeding.Store(false)
	if err != nil {
		s.Stop()
		return err
	}
	s.watches.Replace(s.key("warehouses"), ww)

	s.logger.Info("Pipeline session started", "project", s.project, "stages", len(stages), "warehouses", len(warehouses))
	return nil
}

// Stop cancels the watches. Cached data and the last topology stay readable.
func (s *Session) Stop() {
	s.watches.Cancel(s.key("stages"))
	s.watches.Cancel(s.key("warehouses"))
}

// SetVisible pauses the watches when the view is hidden and restarts them
// from a fresh fetch when it becomes visible again.
func (s *Session) SetVisible(ctx context.Context, visible bool) error {
	s.mu.Lock()
	was := s.visible
	if !visible {
		s.visible = false
	}
	s.mu.Unlock()

	switch {
	case was && !visible:
		s.Stop()
		s.logger.Debug("Pipeline session hidden, watches cancelled", "project", s.project)
	case !was && visible:
		return s.Start(ctx)
	}
	return nil
}

// Visible reports whether the session is watching.
func (s *Session) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// rebuild recomputes the topology from the current caches. Build failures
// keep the previous result.
func (s *Session) rebuild(reason string, revision uint64) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	res, err := s.builder.Build(s.context(), s.project, s.stages.Snapshot().Items(), s.warehouses.Snapshot().Items())
	if err != nil {
		s.logger.Warn("Topology rebuild failed, keeping last layout", "project", s.project, "err", err)
		return
	}
	s.mu.Lock()
	s.result = res
	s.mu.Unlock()
	s.updates.broadcast(Update{Project: s.project, Reason: reason, Revision: revision})
}

// Rebuild forces a topology recompute, e.g. after a settings change.
func (s *Session) Rebuild() topology.Result {
	s.rebuild("settings", 0)
	return s.Topology()
}

// Topology returns the latest layout.
func (s *Session) Topology() topology.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Stages returns the read side of the stage cache.
func (s *Session) Stages() cache.Reader[domain.Stage] {
	return s.stages
}

// Warehouses returns the read side of the warehouse cache.
func (s *Session) Warehouses() cache.Reader[domain.Warehouse] {
	return s.warehouses
}

// Subscribe registers for update notifications. The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan Update, func()) {
	return s.updates.subscribe()
}

// ToggleHideSubscriptions flips the persisted flag and rebuilds.
func (s *Session) ToggleHideSubscriptions(ctx context.Context) (bool, error) {
	hide, err := s.builder.ToggleHideSubscriptions(ctx, s.project)
	if err != nil {
		return hide, err
	}
	s.Rebuild()
	return hide, nil
}

// ReassignColors clears the persisted colors and rebuilds, assigning new ones.
func (s *Session) ReassignColors(ctx context.Context) error {
	if err := s.builder.ReassignColors(ctx, s.project); err != nil {
		return err
	}
	s.Rebuild()
	return nil
}
