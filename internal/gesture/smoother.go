package gesture

import (
	"math"

	"github.com/ayusman/pinchvol/internal/geom"
)

// Volume mapping defaults, in pixels at 640x480. A pinch at or below PinchLow
// maps to 0 and one at or above PinchHigh maps to 100.
const (
	DefaultPinchLow   = 20.0
	DefaultPinchHigh  = 180.0
	DefaultWindowSize = 5
)

// SmootherConfig configures a VolumeSmoother.
type SmootherConfig struct {
	PinchLow  float64
	PinchHigh float64
	Window    int
	// ResetOnRelease clears the history whenever the gesture leaves Pinch, so
	// a new pinch does not average in samples from the previous one.
	ResetOnRelease bool
}

// DefaultSmootherConfig returns the reference thresholds with reset on release.
func DefaultSmootherConfig() SmootherConfig {
	return SmootherConfig{
		PinchLow:       DefaultPinchLow,
		PinchHigh:      DefaultPinchHigh,
		Window:         DefaultWindowSize,
		ResetOnRelease: true,
	}
}

// VolumeSmoother maps pinch distance to a 0-100 volume and averages it over a
// trailing window. It is not safe for concurrent use; the frame pipeline owns it.
type VolumeSmoother struct {
	cfg     SmootherConfig
	history []int
}

// NewVolumeSmoother creates a smoother. A window below 1 is treated as 1.
func NewVolumeSmoother(cfg SmootherConfig) *VolumeSmoother {
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	return &VolumeSmoother{
		cfg:     cfg,
		history: make([]int, 0, cfg.Window+1),
	}
}

// RawVolume maps a pinch distance to an integer volume clamped to [0, 100].
func (s *VolumeSmoother) RawVolume(pinchPx float64) int {
	v := geom.MapRange(pinchPx, s.cfg.PinchLow, s.cfg.PinchHigh, 0, 100)
	return int(math.Trunc(geom.Clamp(v, 0, 100)))
}

// Update records a pinch distance and returns the smoothed volume.
func (s *VolumeSmoother) Update(pinchPx float64) int {
	return s.Push(s.RawVolume(pinchPx))
}

// Push appends a raw volume sample, evicting the oldest once the window is
// exceeded, and returns the truncated mean of the window.
func (s *VolumeSmoother) Push(raw int) int {
	s.history = append(s.history, raw)
	if len(s.history) > s.cfg.Window {
		s.history = s.history[1:]
	}

	sum := 0
	for _, v := range s.history {
		sum += v
	}
	return sum / len(s.history)
}

// Observe tells the smoother which gesture the current frame settled on.
func (s *VolumeSmoother) Observe(state State) {
	if state != Pinch && s.cfg.ResetOnRelease {
		s.Reset()
	}
}

// Reset drops all samples.
func (s *VolumeSmoother) Reset() {
	s.history = s.history[:0]
}

// Len returns the number of samples in the window.
func (s *VolumeSmoother) Len() int {
	return len(s.history)
}
