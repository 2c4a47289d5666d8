package app

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/pinchvol/internal/capture"
	"github.com/ayusman/pinchvol/internal/detector"
	"github.com/ayusman/pinchvol/internal/overlay"
)

// runPipeline is the main loop. Frames are handled strictly one after another:
// frame N+1 is not read until frame N has been published and encoded, because
// the gesture and volume history depend on frame order.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}, logger *log.Entry) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			if isFatalCameraError(err) {
				logger.WithError(err).Error("Camera closed, stopping pipeline")
				return
			}
			logger.WithError(err).Debug("Error reading frame")
			select {
			case <-stopCh:
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		if err := a.ProcessFrame(frame); err != nil {
			logger.WithError(err).Warn("Error emitting frame")
		}
		frame.Close()
	}
}

// ProcessFrame runs one frame through the pipeline:
// mirror, detect, classify, smooth, publish, annotate, encode and emit.
// While the session is paused the frame is emitted untouched and nothing is
// published; the smoother still counts it as a frame without a pinch.
func (a *App) ProcessFrame(frame *gocv.Mat) error {
	if !a.config.Session.Running() {
		a.processor.Release()
		return a.emit(frame)
	}

	if a.config.Mirror {
		capture.Mirror(frame)
	}

	started := time.Now()

	hands, err := a.config.Detector.Detect(frame)
	if err != nil {
		// A failed detection only costs this frame; treat it as no hand.
		log.WithError(err).Warn("Error detecting hands")
		hands = nil
	}

	out := a.processor.Process(Observation{
		Hand:   detector.Primary(hands),
		Width:  frame.Cols(),
		Height: frame.Rows(),
	}, started)

	if a.config.Annotate {
		overlay.Draw(frame, overlay.Annotation{
			Landmarks:  out.Landmarks,
			Gesture:    out.Result.Gesture,
			Volume:     out.Result.Volume,
			Confidence: out.Result.Confidence,
		})
	}

	return a.emit(frame)
}

func (a *App) emit(frame *gocv.Mat) error {
	jpeg, err := capture.EncodeJPEG(frame)
	if err != nil {
		return err
	}
	a.config.Frames.Publish(jpeg)
	return nil
}
