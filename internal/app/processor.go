package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchvol/internal/detector"
	"github.com/ayusman/pinchvol/internal/gesture"
	"github.com/ayusman/pinchvol/internal/session"
)

// Observation is one frame's detector output. Hand is nil when no hand was seen.
// Landmarks in Hand are normalized; Width and Height are the frame size used to
// scale them to pixels before any distance is measured.
type Observation struct {
	Hand   *detector.HandLandmarks
	Width  int
	Height int
}

// Outcome is what Process decided for a frame.
type Outcome struct {
	Result    session.FrameResult
	Landmarks *gesture.Landmarks // pixel coordinates, nil without a hand
}

// Processor is the camera-free part of the pipeline: classify, smooth and
// publish. It keeps temporal state and must be fed frames in order from a
// single goroutine.
type Processor struct {
	classifier gesture.Classifier
	smoother   *gesture.VolumeSmoother
	session    *session.State
}

// NewProcessor wires a classifier and smoother to the session they publish to.
func NewProcessor(c gesture.Classifier, smoother *gesture.VolumeSmoother, s *session.State) *Processor {
	return &Processor{
		classifier: c,
		smoother:   smoother,
		session:    s,
	}
}

// Process classifies the observation, updates the volume on Pinch, and
// publishes the result. started marks when work on the frame began and is used
// for the reported latency.
func (p *Processor) Process(obs Observation, started time.Time) Outcome {
	var out Outcome

	if obs.Hand == nil {
		p.smoother.Observe(gesture.Inactive)
		out.Result = session.FrameResult{Gesture: gesture.Inactive}
	} else {
		lm := obs.Hand.ToPixels(obs.Width, obs.Height)
		in := gesture.Analyze(&lm)
		state := p.classifier.Classify(in)
		p.smoother.Observe(state)

		out.Landmarks = &lm
		out.Result = session.FrameResult{
			HandObserved:  true,
			Gesture:       state,
			PinchDistance: in.PinchDistance,
			Confidence:    obs.Hand.Score,
		}

		if state == gesture.Pinch {
			out.Result.Volume = p.smoother.Update(in.PinchDistance)
			log.WithFields(log.Fields{
				"dist":   int(in.PinchDistance),
				"volume": out.Result.Volume,
			}).Debug("pinch")
		}
	}

	out.Result.Latency = time.Since(started)
	p.session.Publish(out.Result)
	return out
}

// Release tells the smoother the hand left the pinch without publishing
// anything. The pipeline calls it for frames skipped while paused.
func (p *Processor) Release() {
	p.smoother.Observe(gesture.Inactive)
}
