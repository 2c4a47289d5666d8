// Package session holds the live gesture/volume record shared between the frame
// pipeline and any number of pollers.
package session

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/pinchvol/internal/gesture"
)

// DefaultMillimetersPerPixel converts pinch distance in pixels to an approximate
// finger gap. It depends on how far the hand is from the camera and is not a
// calibrated measurement.
const DefaultMillimetersPerPixel = 0.25

// Snapshot is an immutable view of the session. JSON keys match the polling API.
type Snapshot struct {
	Running          bool          `json:"is_running"`
	Gesture          gesture.State `json:"current_gesture"`
	Volume           int           `json:"current_volume"`
	FingerDistanceMm int           `json:"finger_distance_mm"`
	AccuracyPercent  float64       `json:"accuracy"`
	ResponseTimeMs   int64         `json:"response_time_ms"`
}

// FrameResult is what the pipeline learned from one processed frame.
type FrameResult struct {
	// HandObserved is false when the detector found no hand.
	HandObserved  bool
	Gesture       gesture.State
	PinchDistance float64 // pixels
	Confidence    float64 // [0,1]
	// Volume is the smoothed volume; it is only applied when Gesture is Pinch.
	Volume  int
	Latency time.Duration
}

// State is the session record. Readers call Snapshot and never block; the
// frame pipeline is the only caller of Publish, and Start/Pause are the only
// external mutations.
type State struct {
	current   atomic.Pointer[Snapshot]
	mu        sync.Mutex // serializes writers
	deliver   sync.Mutex // keeps listener calls in publish order
	mmPerPx   float64
	listeners []func(Snapshot)
}

// New returns a paused, inactive session.
func New() *State {
	s := &State{mmPerPx: DefaultMillimetersPerPixel}
	s.current.Store(&Snapshot{Gesture: gesture.Inactive})
	return s
}

// SetMillimetersPerPixel overrides the pixel-to-millimeter factor.
// Values less than or equal to 0 are ignored.
func (s *State) SetMillimetersPerPixel(f float64) {
	if f <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mmPerPx = f
}

// OnChange registers fn to be called with every new snapshot, in the order the
// snapshots were stored. fn runs on the writer's goroutine, must not block and
// must not call Start, Pause or Publish.
func (s *State) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the latest published state.
func (s *State) Snapshot() Snapshot {
	return *s.current.Load()
}

// Running reports whether frames should be processed.
func (s *State) Running() bool {
	return s.current.Load().Running
}

// Start enables frame processing.
func (s *State) Start() {
	s.update(func(snap *Snapshot) bool {
		snap.Running = true
		return true
	})
}

// Pause disables frame processing and marks the gesture Inactive.
func (s *State) Pause() {
	s.update(func(snap *Snapshot) bool {
		snap.Running = false
		snap.Gesture = gesture.Inactive
		return true
	})
}

// Publish applies one frame's result. Results arriving after a Pause are dropped
// so a frame that was in flight cannot overwrite the paused state.
//
// Without a hand only the gesture (Inactive) and latency change. With a hand the
// gesture, finger distance and accuracy always change, and the volume only on Pinch.
func (s *State) Publish(r FrameResult) {
	s.update(func(snap *Snapshot) bool {
		if !snap.Running {
			return false
		}

		snap.ResponseTimeMs = r.Latency.Milliseconds()

		if !r.HandObserved {
			snap.Gesture = gesture.Inactive
			return true
		}

		snap.Gesture = r.Gesture
		snap.FingerDistanceMm = int(r.PinchDistance * s.mmPerPx)
		snap.AccuracyPercent = math.Round(r.Confidence*1000) / 10
		if r.Gesture == gesture.Pinch {
			snap.Volume = r.Volume
		}
		return true
	})
}

func (s *State) update(fn func(*Snapshot) bool) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	next := *s.current.Load()
	if !fn(&next) {
		s.mu.Unlock()
		return
	}
	s.current.Store(&next)
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}
