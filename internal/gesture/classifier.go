package gesture

import "fmt"

// State is the discrete gesture reported for a frame.
type State int

const (
	// Inactive means no hand was observed. Classifiers never return it.
	Inactive State = iota
	OpenHand
	Pinch
	Closed
)

var stateNames = map[State]string{
	Inactive: "Inactive",
	OpenHand: "Open Hand",
	Pinch:    "Pinch",
	Closed:   "Closed",
}

// String returns the display name of the state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by its display name.
func (s State) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("gesture: unknown state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a display name back into a State.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("gesture: unknown state %q", text)
}

// DefaultNearThreshold is the pinch distance in pixels, at 640x480, below which
// an open hand counts as pinching.
const DefaultNearThreshold = 30.0

// Input is what a classifier sees for one hand in one frame.
type Input struct {
	Folds         Folds
	PinchDistance float64 // pixels
}

// Analyze extracts classifier input from pixel-space landmarks.
func Analyze(lm *Landmarks) Input {
	return Input{
		Folds:         DetectFolds(lm),
		PinchDistance: PinchDistance(lm),
	}
}

// Classifier maps an observed hand to OpenHand, Pinch or Closed.
type Classifier interface {
	Classify(in Input) State
}

// RobustClassifier votes among middle, ring and pinky so that a single
// misdetected finger does not flip the result, and checks the index finger on
// its own to tell a closed fist from a pinch with the back fingers curled.
type RobustClassifier struct {
	NearThreshold float64
}

// NewRobustClassifier returns a RobustClassifier using DefaultNearThreshold.
func NewRobustClassifier() *RobustClassifier {
	return &RobustClassifier{NearThreshold: DefaultNearThreshold}
}

// Classify implements Classifier.
func (c *RobustClassifier) Classify(in Input) State {
	if in.Folds.BackCount() >= 2 {
		if in.Folds.Index {
			return Closed
		}
		return Pinch
	}
	if in.PinchDistance < c.NearThreshold {
		return Pinch
	}
	return OpenHand
}

// SimpleClassifier is the older rule set: Closed only when all four fingers
// are folded, otherwise Pinch purely on distance. A single misdetected finger
// turns a fist into Open Hand, so it is kept for comparison only.
type SimpleClassifier struct {
	NearThreshold float64
}

// Classify implements Classifier.
func (c *SimpleClassifier) Classify(in Input) State {
	f := in.Folds
	if f.Index && f.Middle && f.Ring && f.Pinky {
		return Closed
	}
	if in.PinchDistance < c.NearThreshold {
		return Pinch
	}
	return OpenHand
}
