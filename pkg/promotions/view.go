package promotions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/pipeview/internal/logging"
	"github.com/aretw0/pipeview/pkg/cache"
	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/ports"
	"github.com/aretw0/pipeview/pkg/reconcile"
)

// ErrStageRequired is returned when a View has no stage to watch.
var ErrStageRequired = errors.New("stage is required")

// Source is what a View needs from the API client.
type Source interface {
	ports.Fetcher
	ports.Streamer
}

// View is the live promotion list of one stage.
type View struct {
	project string
	stage   string
	source  Source

	cache    *cache.Cache[domain.Promotion]
	watches  *reconcile.Group
	logger   *slog.Logger
	recorder reconcile.Recorder

	mu      sync.Mutex
	watcher *reconcile.Watcher[domain.Promotion]
}

// Option configures a View.
type Option func(*View)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		v.logger = logger
	}
}

// WithRecorder sets the metrics recorder passed to the watcher.
func WithRecorder(r reconcile.Recorder) Option {
	return func(v *View) {
		v.recorder = r
	}
}

// WithGroup shares a watch group, so that at most one promotion watch per
// project and stage is active across views.
func WithGroup(g *reconcile.Group) Option {
	return func(v *View) {
		v.watches = g
	}
}

// NewView creates a stopped view.
func NewView(project, stage string, source Source, opts ...Option) *View {
	v := &View{
		project: project,
		stage:   stage,
		source:  source,
		cache:   cache.New[domain.Promotion](),
		watches: reconcile.NewGroup(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *View) key() string {
	return reconcile.Key("promotions", v.project, v.stage)
}

// Start fetches the stage's promotions and watches for changes. Calling Start
// again replaces the previous watch with one seeded from a fresh fetch.
func (v *View) Start(ctx context.Context) error {
	if v.stage == "" {
		return ErrStageRequired
	}
	initial, err := v.source.ListPromotions(ctx, v.project, v.stage)
	if err != nil {
		return fmt.Errorf("failed to list promotions: %w", err)
	}

	// The previous watch must be gone before the fresh seed is published.
	v.watches.Cancel(v.key())

	opts := []reconcile.Option{reconcile.WithKind("promotions"), reconcile.WithLogger(v.logger)}
	if v.recorder != nil {
		opts = append(opts, reconcile.WithRecorder(v.recorder))
	}
	w, err := reconcile.Watch(ctx, v.cache, initial, func(ctx context.Context) (<-chan domain.Event[domain.Promotion], error) {
		return v.source.WatchPromotions(ctx, v.project, v.stage)
	}, opts...)
	if err != nil {
		return err
	}
	v.watches.Replace(v.key(), w)
	v.mu.Lock()
	v.watcher = w
	v.mu.Unlock()
	v.logger.Debug("Promotions watch started", "project", v.project, "stage", v.stage, "count", len(initial))
	return nil
}

// Stop cancels the watch. The last snapshot stays readable.
func (v *View) Stop() {
	v.watches.Cancel(v.key())
}

// Done is closed when the current watch has stopped. It is nil before Start.
func (v *View) Done() <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.watcher == nil {
		return nil
	}
	return v.watcher.Done()
}

// Err reports the stream failure that stopped the current watch, if any.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.watcher == nil {
		return nil
	}
	return v.watcher.Err()
}

// Snapshot returns the cached promotions in arrival order.
func (v *View) Snapshot() *cache.Snapshot[domain.Promotion] {
	return v.cache.Snapshot()
}

// Cache exposes the read side of the promotion cache.
func (v *View) Cache() cache.Reader[domain.Promotion] {
	return v.cache
}

// Rows returns the display rows.
func (v *View) Rows() []Row {
	return Rows(v.cache.Snapshot().Items())
}

// Lookup returns the live row of a promotion by name, so a details view
// follows updates instead of holding a stale copy.
func (v *View) Lookup(name string) (Row, bool) {
	p, ok := v.cache.Snapshot().Get(name)
	if !ok {
		return Row{}, false
	}
	return Annotate(p), true
}

// FreightAlias resolves the human alias of a promoted freight.
func (v *View) FreightAlias(ctx context.Context, freight string) (string, error) {
	f, err := v.source.GetFreight(ctx, v.project, freight)
	if err != nil {
		return "", fmt.Errorf("failed to get freight %s: %w", freight, err)
	}
	return f.Alias, nil
}
