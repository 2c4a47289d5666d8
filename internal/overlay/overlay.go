// Package overlay annotates processed frames with the current gesture.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchvol/internal/detector"
	"github.com/ayusman/pinchvol/internal/gesture"
	"github.com/ayusman/pinchvol/internal/geom"
)

// GoodDetection is the confidence above which the detection badge is shown.
const GoodDetection = 0.8

var (
	pinchRed   = color.RGBA{R: 255, G: 50, B: 50}
	pinchBlue  = color.RGBA{R: 50, G: 50, B: 255}
	closedRed  = color.RGBA{R: 255}
	skeleton   = color.RGBA{R: 255, G: 255, B: 255}
	jointColor = color.RGBA{R: 255, G: 0, B: 0}
	badgeGreen = color.RGBA{R: 55, G: 172, B: 80}
	white      = color.RGBA{R: 255, G: 255, B: 255}
)

// Annotation is everything needed to decorate one frame.
type Annotation struct {
	Landmarks  *gesture.Landmarks // pixel coordinates; nil when no hand was seen
	Gesture    gesture.State
	Volume     int
	Confidence float64
}

// Draw decorates frame in place according to the gesture.
func Draw(frame *gocv.Mat, a Annotation) {
	if a.Landmarks == nil {
		return
	}
	lm := a.Landmarks

	switch a.Gesture {
	case gesture.Pinch:
		drawPinch(frame, lm, a.Volume)
	case gesture.Closed:
		drawClosed(frame, lm)
	case gesture.OpenHand:
		drawSkeleton(frame, lm)
	}

	if a.Confidence > GoodDetection {
		drawBadge(frame)
	}
}

func pt(p geom.Point) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

func drawPinch(frame *gocv.Mat, lm *gesture.Landmarks, volume int) {
	thumb := pt(lm[detector.ThumbTip])
	index := pt(lm[detector.IndexTip])

	gocv.Line(frame, thumb, index, pinchRed, 3)
	gocv.Circle(frame, thumb, 10, pinchRed, -1)
	gocv.Circle(frame, index, 10, pinchBlue, -1)

	mid := image.Pt((thumb.X+index.X)/2, (thumb.Y+index.Y)/2-20)
	gocv.PutText(frame, fmt.Sprintf("%d%%", volume), mid, gocv.FontHersheySimplex, 0.8, pinchRed, 2)
}

func drawClosed(frame *gocv.Mat, lm *gesture.Landmarks) {
	c := pt(lm[detector.MiddleMCP])
	gocv.Circle(frame, c, 30, closedRed, 2)
	gocv.PutText(frame, "CLOSED", image.Pt(c.X-30, c.Y-40), gocv.FontHersheySimplex, 0.7, closedRed, 2)
}

func drawSkeleton(frame *gocv.Mat, lm *gesture.Landmarks) {
	for _, conn := range detector.Connections {
		gocv.Line(frame, pt(lm[conn[0]]), pt(lm[conn[1]]), skeleton, 2)
	}
	for _, p := range lm {
		gocv.Circle(frame, pt(p), 4, jointColor, -1)
	}
}

func drawBadge(frame *gocv.Mat) {
	w := frame.Cols()
	gocv.Rectangle(frame, image.Rect(w-170, 20, w-20, 60), badgeGreen, -1)
	gocv.PutText(frame, "Good Detection", image.Pt(w-160, 48), gocv.FontHersheySimplex, 0.6, white, 2)
}
