package pipeview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pipeview/internal/logging"
	"github.com/aretw0/pipeview/pkg/adapters/memory"
	"github.com/aretw0/pipeview/pkg/pipeline"
	"github.com/aretw0/pipeview/pkg/ports"
	"github.com/aretw0/pipeview/pkg/promotions"
	"github.com/aretw0/pipeview/pkg/reconcile"
	"github.com/aretw0/pipeview/pkg/topology"
)

// Version is the release version, set at build time.
var Version = "dev"

// ErrClosed is returned by a Viewer after Close.
var ErrClosed = errors.New("viewer is closed")

// Source is the API client a Viewer reads from and acts on.
type Source = pipeline.Source

// Recorder receives watch and build metrics.
type Recorder interface {
	reconcile.Recorder
	ObserveBuild(time.Duration)
}

// Viewer is the high-level entry point. It owns one live pipeline session
// per project and one promotion view per stage, all sharing a single watch
// group so that a given stream is never opened twice.
type Viewer struct {
	source   Source
	settings ports.SettingsStore
	logger   *slog.Logger
	recorder Recorder

	builder *topology.Builder
	watches *reconcile.Group

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	closed   bool
	sessions map[string]*pipeline.Session
	views    map[string]*promotions.View
}

// Option defines a functional option for configuring the Viewer.
type Option func(*Viewer)

// WithSettings sets where hide-subscriptions and stage colors persist.
// The default is an in-memory store.
func WithSettings(store ports.SettingsStore) Option {
	return func(v *Viewer) {
		v.settings = store
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Viewer) {
		v.logger = logger
	}
}

// WithRecorder registers a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(v *Viewer) {
		v.recorder = r
	}
}

// New creates a Viewer over source. Sessions and views it hands out live
// until Close.
func New(source Source, opts ...Option) *Viewer {
	v := &Viewer{
		source:   source,
		sessions: make(map[string]*pipeline.Session),
		views:    make(map[string]*promotions.View),
		watches:  reconcile.NewGroup(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = logging.NewNop()
	}
	if v.settings == nil {
		v.settings = memory.NewStore()
	}

	builderOpts := []topology.BuilderOption{topology.WithLogger(v.logger)}
	if v.recorder != nil {
		builderOpts = append(builderOpts, topology.WithObserver(v.recorder.ObserveBuild))
	}
	v.builder = topology.NewBuilder(v.settings, builderOpts...)
	v.ctx, v.cancel = context.WithCancel(context.Background())
	return v
}

// Pipeline returns the live session of project, starting it on first use.
func (v *Viewer) Pipeline(ctx context.Context, project string) (*pipeline.Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, ErrClosed
	}
	if s, ok := v.sessions[project]; ok {
		return s, nil
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(v.logger.With("project", project)),
		pipeline.WithGroup(v.watches),
	}
	if v.recorder != nil {
		opts = append(opts, pipeline.WithRecorder(v.recorder))
	}
	s := pipeline.NewSession(project, v.source, v.builder, opts...)
	if err := v.start(ctx, s.Start); err != nil {
		return nil, err
	}
	v.sessions[project] = s
	return s, nil
}

// Promotions returns the live promotion view of a stage, starting it on
// first use.
func (v *Viewer) Promotions(ctx context.Context, project, stage string) (*promotions.View, error) {
	key := reconcile.Key("promotions", project, stage)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, ErrClosed
	}
	if view, ok := v.views[key]; ok {
		return view, nil
	}

	opts := []promotions.Option{
		promotions.WithLogger(v.logger.With("project", project, "stage", stage)),
		promotions.WithGroup(v.watches),
	}
	if v.recorder != nil {
		opts = append(opts, promotions.WithRecorder(v.recorder))
	}
	view := promotions.NewView(project, stage, v.source, opts...)
	if err := v.start(ctx, view.Start); err != nil {
		return nil, err
	}
	v.views[key] = view
	return view, nil
}

// SetVisible pauses or resumes the watches of a project's session.
func (v *Viewer) SetVisible(ctx context.Context, project string, visible bool) error {
	s, err := v.Pipeline(ctx, project)
	if err != nil {
		return err
	}
	return v.start(ctx, func(c context.Context) error {
		return s.SetVisible(c, visible)
	})
}

// ClosePromotions stops and forgets the view of a stage.
func (v *Viewer) ClosePromotions(project, stage string) {
	key := reconcile.Key("promotions", project, stage)
	v.mu.Lock()
	view, ok := v.views[key]
	delete(v.views, key)
	v.mu.Unlock()
	if ok {
		view.Stop()
	}
}

// start runs fn with the Viewer's context, so watches outlive the request
// that opened them. ctx only gates whether the start happens at all.
func (v *Viewer) start(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(v.ctx)
}

// Settings returns the settings store.
func (v *Viewer) Settings() ports.SettingsStore {
	return v.settings
}

// Source returns the API client.
func (v *Viewer) Source() Source {
	return v.source
}

// Close stops every session and view.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	sessions := v.sessions
	views := v.views
	v.sessions = nil
	v.views = nil
	v.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
	for _, view := range views {
		view.Stop()
	}
	v.watches.CancelAll()
	v.cancel()
}
