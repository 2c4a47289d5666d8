// Package app runs the frame pipeline that turns camera frames into gesture
// state and an annotated MJPEG preview.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchvol/internal/capture"
	"github.com/ayusman/pinchvol/internal/detector"
	"github.com/ayusman/pinchvol/internal/gesture"
	"github.com/ayusman/pinchvol/internal/session"
)

// retryDelay is how long the loop waits after the camera fails to deliver a frame.
const retryDelay = 20 * time.Millisecond

// Config holds the collaborators of the pipeline. Nil fields get defaults.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Session    *session.State
	Frames     *capture.Hub
	Classifier gesture.Classifier
	Smoother   gesture.SmootherConfig
	// Mirror flips frames horizontally before detection while running.
	Mirror bool
	// Annotate draws the gesture overlay on processed frames.
	Annotate bool
}

// App owns the single frame-processing goroutine.
type App struct {
	config    Config
	processor *Processor
	mu        sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}
	runID     string
}

// New creates an App. Without a detector it tries MediaPipe and falls back to a
// mock detector that never sees a hand.
func New(config Config) *App {
	if config.Session == nil {
		config.Session = session.New()
	}
	if config.Frames == nil {
		config.Frames = capture.NewHub()
	}
	if config.Classifier == nil {
		config.Classifier = gesture.NewRobustClassifier()
	}
	if config.Smoother.Window == 0 {
		config.Smoother = gesture.DefaultSmootherConfig()
	}
	if config.Camera == nil {
		config.Camera = capture.NewCamera(capture.DefaultConfig())
	}
	if config.Detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			config.Detector = mp
			log.Info("Using MediaPipe hand detection")
		} else {
			log.WithError(err).Warn("MediaPipe not available, using mock detector")
			config.Detector = detector.NewMockDetector()
		}
	}

	return &App{
		config: config,
		processor: NewProcessor(
			config.Classifier,
			gesture.NewVolumeSmoother(config.Smoother),
			config.Session,
		),
	}
}

// Session returns the shared session state.
func (a *App) Session() *session.State {
	return a.config.Session
}

// Frames returns the hub the encoded preview frames are published to.
func (a *App) Frames() *capture.Hub {
	return a.config.Frames
}

// Start opens the camera and begins the pipeline loop. Calling Start on a
// running App is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.config.Camera.Open(); err != nil {
		return err
	}

	a.runID = uuid.NewString()
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh, log.WithField("run", a.runID))

	log.WithField("run", a.runID).Info("Frame pipeline started")
	return nil
}

// Stop halts the pipeline, waits for the in-flight frame, and releases the
// camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		<-a.doneCh
		a.stopCh = nil
		a.doneCh = nil
	}

	if err := a.config.Camera.Close(); err != nil {
		log.WithError(err).Warn("Error closing camera")
	}

	if err := a.config.Detector.Close(); err != nil {
		log.WithError(err).Warn("Error closing detector")
	}

	log.WithField("run", a.runID).Info("Frame pipeline stopped")
}

func isFatalCameraError(err error) bool {
	return errors.Is(err, capture.ErrCameraNotOpen)
}
