package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// Reference capture size the fixture hands are laid out for.
const (
	FixtureWidth  = 640
	FixtureHeight = 480
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fromPixels builds a right hand from landmark positions given in pixels of a
// FixtureWidth x FixtureHeight frame.
func fromPixels(px [NumLandmarks][2]float64) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}
	for i, p := range px {
		h.Points[i] = Point3D{X: p[0] / FixtureWidth, Y: p[1] / FixtureHeight}
	}
	return h
}

// OpenHandLandmarks returns an open palm with every finger extended and the
// thumb spread roughly 200px away from the index tip.
func OpenHandLandmarks() HandLandmarks {
	return fromPixels([NumLandmarks][2]float64{
		Wrist:     {320, 420},
		ThumbCMC:  {360, 400},
		ThumbMCP:  {395, 375},
		ThumbIP:   {440, 350},
		ThumbTip:  {480, 330},
		IndexMCP:  {350, 300},
		IndexPIP:  {360, 240},
		IndexDIP:  {365, 200},
		IndexTip:  {370, 160},
		MiddleMCP: {320, 295},
		MiddlePIP: {320, 225},
		MiddleDIP: {320, 180},
		MiddleTip: {320, 140},
		RingMCP:   {290, 300},
		RingPIP:   {282, 240},
		RingDIP:   {278, 200},
		RingTip:   {275, 165},
		PinkyMCP:  {262, 315},
		PinkyPIP:  {250, 265},
		PinkyDIP:  {244, 232},
		PinkyTip:  {240, 200},
	})
}

// FistLandmarks returns a closed fist: all four fingers curled with the thumb
// wrapped over them.
func FistLandmarks() HandLandmarks {
	return fromPixels([NumLandmarks][2]float64{
		Wrist:     {320, 420},
		ThumbCMC:  {355, 400},
		ThumbMCP:  {380, 365},
		ThumbIP:   {370, 335},
		ThumbTip:  {350, 320},
		IndexMCP:  {350, 300},
		IndexPIP:  {355, 250},
		IndexDIP:  {345, 280},
		IndexTip:  {340, 310},
		MiddleMCP: {320, 295},
		MiddlePIP: {322, 245},
		MiddleDIP: {315, 275},
		MiddleTip: {312, 305},
		RingMCP:   {292, 300},
		RingPIP:   {290, 252},
		RingDIP:   {288, 282},
		RingTip:   {288, 310},
		PinkyMCP:  {265, 315},
		PinkyPIP:  {260, 272},
		PinkyDIP:  {262, 298},
		PinkyTip:  {265, 320},
	})
}

// PointingLandmarks returns a fist with only the index finger extended.
func PointingLandmarks() HandLandmarks {
	h := FistLandmarks()
	h.Points[IndexPIP] = Point3D{X: 360.0 / FixtureWidth, Y: 240.0 / FixtureHeight}
	h.Points[IndexDIP] = Point3D{X: 365.0 / FixtureWidth, Y: 200.0 / FixtureHeight}
	h.Points[IndexTip] = Point3D{X: 370.0 / FixtureWidth, Y: 160.0 / FixtureHeight}
	return h
}

// WithPinchDistance returns a copy of h whose thumb tip sits distPx pixels to the
// right of the index tip on a width x height frame. Thumb placement does not
// affect fold detection.
func WithPinchDistance(h HandLandmarks, distPx float64, width, height int) HandLandmarks {
	index := h.Points[IndexTip]
	h.Points[ThumbTip] = Point3D{
		X: index.X + distPx/float64(width),
		Y: index.Y,
		Z: index.Z,
	}
	return h
}
