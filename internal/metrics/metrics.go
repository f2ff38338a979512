// Package metrics exposes the viewer's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/pipeview/pkg/domain"
)

// Collector records watch and topology activity. It implements
// reconcile.Recorder.
type Collector struct {
	eventsApplied *prometheus.CounterVec
	streamErrors  *prometheus.CounterVec
	activeWatches *prometheus.GaugeVec
	buildSeconds  prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		eventsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeview_events_applied_total",
				Help: "Watch events applied to a cache",
			},
			[]string{"kind", "type"},
		),
		streamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeview_stream_errors_total",
				Help: "Watch streams that ended with an error",
			},
			[]string{"kind"},
		),
		activeWatches: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipeview_active_watches",
				Help: "Watches currently open",
			},
			[]string{"kind"},
		),
		buildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeview_topology_build_seconds",
			Help:    "Time spent building a pipeline topology",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	for _, col := range []prometheus.Collector{c.eventsApplied, c.streamErrors, c.activeWatches, c.buildSeconds} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) WatchStarted(kind string) {
	c.activeWatches.WithLabelValues(kind).Inc()
}

func (c *Collector) WatchStopped(kind string) {
	c.activeWatches.WithLabelValues(kind).Dec()
}

func (c *Collector) EventApplied(kind string, t domain.EventType) {
	c.eventsApplied.WithLabelValues(kind, string(t)).Inc()
}

func (c *Collector) StreamFailed(kind string) {
	c.streamErrors.WithLabelValues(kind).Inc()
}

// ObserveBuild records one topology build. Pass it to topology.WithObserver.
func (c *Collector) ObserveBuild(d time.Duration) {
	c.buildSeconds.Observe(d.Seconds())
}
