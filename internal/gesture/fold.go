// Package gesture classifies a single hand pose into a gesture state and turns
// pinch distance into a smoothed volume level.
package gesture

import (
	"fmt"

	"github.com/ayusman/pinchvol/internal/detector"
	"github.com/ayusman/pinchvol/internal/geom"
)

// Landmarks holds one hand's 21 landmarks in pixel coordinates.
type Landmarks = [detector.NumLandmarks]geom.Point

// Finger identifies one of the four fingers that take part in fold detection.
// The thumb is only used for pinch distance.
type Finger int

const (
	Index Finger = iota
	Middle
	Ring
	Pinky
)

// Joints returns the tip and PIP landmark indices of the finger.
func (f Finger) Joints() (tip, pip int) {
	switch f {
	case Index:
		return detector.IndexTip, detector.IndexPIP
	case Middle:
		return detector.MiddleTip, detector.MiddlePIP
	case Ring:
		return detector.RingTip, detector.RingPIP
	case Pinky:
		return detector.PinkyTip, detector.PinkyPIP
	}
	panic(fmt.Sprintf("gesture: unknown finger %d", int(f)))
}

// IsFolded reports whether the finger with the given tip and middle joint is
// curled: its tip lies nearer to the wrist than its joint does.
func IsFolded(lm *Landmarks, tip, joint int) bool {
	return IsFoldedFrom(lm, tip, joint, detector.Wrist)
}

// IsFoldedFrom is IsFolded measured against an arbitrary reference landmark.
// Out-of-range indices are a programming error and panic.
func IsFoldedFrom(lm *Landmarks, tip, joint, wrist int) bool {
	for _, i := range [...]int{tip, joint, wrist} {
		if i < 0 || i >= detector.NumLandmarks {
			panic(fmt.Sprintf("gesture: landmark index %d out of range", i))
		}
	}
	w := lm[wrist]
	return geom.Distance(lm[tip], w) < geom.Distance(lm[joint], w)
}

// Folds records the fold state of each non-thumb finger.
type Folds struct {
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
}

// DetectFolds evaluates every non-thumb finger independently.
func DetectFolds(lm *Landmarks) Folds {
	folded := func(f Finger) bool {
		tip, pip := f.Joints()
		return IsFolded(lm, tip, pip)
	}
	return Folds{
		Index:  folded(Index),
		Middle: folded(Middle),
		Ring:   folded(Ring),
		Pinky:  folded(Pinky),
	}
}

// BackCount returns how many of middle, ring and pinky are folded.
func (f Folds) BackCount() int {
	n := 0
	for _, b := range [...]bool{f.Middle, f.Ring, f.Pinky} {
		if b {
			n++
		}
	}
	return n
}

// PinchDistance is the pixel distance between the thumb tip and the index tip.
func PinchDistance(lm *Landmarks) float64 {
	return geom.Distance(lm[detector.ThumbTip], lm[detector.IndexTip])
}
