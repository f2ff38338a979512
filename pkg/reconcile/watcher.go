package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/pipeview/internal/logging"
	"github.com/aretw0/pipeview/pkg/cache"
	"github.com/aretw0/pipeview/pkg/domain"
)

// OpenFunc opens an event stream. The stream must stop when ctx is done.
type OpenFunc[T domain.Object] func(ctx context.Context) (<-chan domain.Event[T], error)

type config struct {
	kind     string
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Watcher.
type Option func(*config)

// WithKind labels the watcher in logs and metrics (e.g. "stages").
func WithKind(kind string) Option {
	return func(c *config) {
		c.kind = kind
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

// Watcher owns one event stream and is the sole writer of its cache.
type Watcher[T domain.Object] struct {
	cfg   config
	cache *cache.Cache[T]
	local *cache.OrderedMap[T]

	// mu serializes event application against Cancel.
	mu        sync.Mutex
	cancelled bool
	err       error

	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Watch seeds c with initial, opens the stream and starts applying events in
// the background. The seed is published even if opening the stream fails, in
// which case the error is returned and no watcher runs.
//
// Cache listeners run on the watcher goroutine after the event is stored and
// outside the watcher lock: a slow listener delays the next event but never
// Cancel, and a listener may cancel its own watcher.
func Watch[T domain.Object](ctx context.Context, c *cache.Cache[T], initial []T, open OpenFunc[T], opts ...Option) (*Watcher[T], error) {
	cfg := config{
		kind:     "resources",
		logger:   logging.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &Watcher[T]{
		cfg:   cfg,
		cache: c,
		local: cache.NewOrderedMap(initial),
		done:  make(chan struct{}),
	}
	c.Publish(w.local)

	streamCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	events, err := open(streamCtx)
	if err != nil {
		cancel()
		close(w.done)
		return nil, fmt.Errorf("open %s stream: %w", cfg.kind, err)
	}

	cfg.logger.Debug("Watch started", "kind", cfg.kind, "seed", len(initial))
	cfg.recorder.WatchStarted(cfg.kind)
	go w.run(streamCtx, events)
	return w, nil
}

func (w *Watcher[T]) run(ctx context.Context, events <-chan domain.Event[T]) {
	defer close(w.done)
	defer w.cfg.recorder.WatchStopped(w.cfg.kind)
	// Release the stream however the loop ends.
	defer w.cancel()

	for {
		select {
		case <-ctx.Done():
			w.markCancelled()
			return
		case ev, ok := <-events:
			if !ok {
				w.stop(ctx, domain.ErrStreamClosed)
				return
			}
			if ev.Type == domain.EventError {
				err := ev.Err
				if err == nil {
					err = errors.New("stream reported an error")
				}
				w.stop(ctx, err)
				return
			}
			if !w.apply(ctx, ev) {
				return
			}
		}
	}
}

// apply returns false once the watcher has been cancelled.
func (w *Watcher[T]) apply(ctx context.Context, ev domain.Event[T]) bool {
	snap, ok := w.store(ctx, ev)
	if !ok {
		return false
	}
	if snap != nil {
		w.cache.Notify(snap)
	}
	return true
}

// store applies ev under the lock. It returns the new snapshot, or nil when
// the event changed nothing.
func (w *Watcher[T]) store(ctx context.Context, ev domain.Event[T]) (*cache.Snapshot[T], bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled || ctx.Err() != nil {
		w.cancelled = true
		return nil, false
	}

	if !Apply(w.local, ev) {
		w.cfg.logger.Debug("Event ignored", "kind", w.cfg.kind, "event", ev.String())
		return nil, true
	}
	snap := w.cache.Store(w.local)
	w.cfg.recorder.EventApplied(w.cfg.kind, ev.Type)
	w.cfg.logger.Debug("Event applied", "kind", w.cfg.kind, "event", ev.String(), "revision", snap.Revision())
	return snap, true
}

func (w *Watcher[T]) markCancelled() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelled = true
}

func (w *Watcher[T]) stop(ctx context.Context, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled || ctx.Err() != nil {
		w.cancelled = true
		return
	}
	w.err = err
	w.cfg.recorder.StreamFailed(w.cfg.kind)
	w.cfg.logger.Warn("Watch stream ended, keeping last snapshot", "kind", w.cfg.kind, "err", err)
}

// Cancel tears the stream down. It is safe to call more than once; only the
// first call has an effect. After Cancel returns the cache is not written
// again, though listeners of the last stored event may still be running.
func (w *Watcher[T]) Cancel() {
	w.once.Do(func() {
		w.mu.Lock()
		w.cancelled = true
		w.mu.Unlock()
		w.cancel()
		w.cfg.logger.Debug("Watch cancelled", "kind", w.cfg.kind)
	})
}

// Done is closed when the watcher goroutine has exited.
func (w *Watcher[T]) Done() <-chan struct{} {
	return w.done
}

// Err returns the stream failure that stopped the watcher, or nil when it is
// still running or was cancelled.
func (w *Watcher[T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Cancelled reports whether Cancel was called.
func (w *Watcher[T]) Cancelled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancelled
}
