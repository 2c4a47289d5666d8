package output

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchvol/internal/gesture"
	"github.com/ayusman/pinchvol/internal/session"
)

// Applier applies a volume request.
type Applier interface {
	Apply(ctx context.Context, req Request) error
}

// PluginApplier sends requests to one plugin through an Executor.
type PluginApplier struct {
	Executor *Executor
	Plugin   *Plugin
}

// Apply implements Applier.
func (a PluginApplier) Apply(ctx context.Context, req Request) error {
	return a.Executor.Execute(ctx, a.Plugin, req)
}

// Sink forwards volume changes made while pinching to an Applier. Only the
// newest volume waits while a call is in flight; intermediate values are skipped.
type Sink struct {
	applier Applier
	pending chan Request

	mu     sync.Mutex
	queued int // last volume offered, -1 before the first
}

// NewSink creates a Sink for applier. Call Run to start delivering.
func NewSink(applier Applier) *Sink {
	return &Sink{
		applier: applier,
		pending: make(chan Request, 1),
		queued:  -1,
	}
}

// Observe is a session listener. It never blocks.
func (s *Sink) Observe(snap session.Snapshot) {
	if !snap.Running || snap.Gesture != gesture.Pinch {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Volume == s.queued {
		return
	}
	s.queued = snap.Volume

	req := Request{Action: ActionSetVolume, Volume: snap.Volume, Gesture: snap.Gesture.String()}
	select {
	case s.pending <- req:
	default:
		select {
		case <-s.pending:
		default:
		}
		s.pending <- req
	}
}

// Run delivers queued volumes until ctx is cancelled. Failures are logged and
// the next change is tried again.
func (s *Sink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.pending:
			if err := s.applier.Apply(ctx, req); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).WithField("volume", req.Volume).Warn("Failed to apply volume")
				continue
			}
			log.WithField("volume", req.Volume).Debug("Volume applied")
		}
	}
}
