// Package geom provides the small planar helpers used by gesture classification.
package geom

import "math"

// Point is a 2D point in pixel space.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two points, in the same unit as the inputs.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// MapRange linearly maps value from [inMin, inMax] onto [outMin, outMax].
// The result is not clamped; values outside the input range extrapolate.
// A degenerate input range maps everything to outMin.
func MapRange(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	if value == inMax {
		return outMax
	}
	return outMin + (value-inMin)*(outMax-outMin)/(inMax-inMin)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
