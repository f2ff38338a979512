package reconcile

import "github.com/aretw0/pipeview/pkg/domain"

// Recorder receives watcher lifecycle notifications, typically for metrics.
type Recorder interface {
	WatchStarted(kind string)
	WatchStopped(kind string)
	EventApplied(kind string, eventType domain.EventType)
	StreamFailed(kind string)
}

type nopRecorder struct{}

func (nopRecorder) WatchStarted(string)                   {}
func (nopRecorder) WatchStopped(string)                   {}
func (nopRecorder) EventApplied(string, domain.EventType) {}
func (nopRecorder) StreamFailed(string)                   {}
