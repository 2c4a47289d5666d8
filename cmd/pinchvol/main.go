package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/lpernett/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ayusman/pinchvol/internal/app"
	"github.com/ayusman/pinchvol/internal/capture"
	"github.com/ayusman/pinchvol/internal/config"
	"github.com/ayusman/pinchvol/internal/detector"
	"github.com/ayusman/pinchvol/internal/gesture"
	"github.com/ayusman/pinchvol/internal/output"
	"github.com/ayusman/pinchvol/internal/server"
	"github.com/ayusman/pinchvol/internal/session"
	"github.com/ayusman/pinchvol/internal/store"
	"github.com/ayusman/pinchvol/internal/tray"
)

// A .env file may hold PINCHVOL_* overrides.
func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}
}

func main() {
	configFile := pflag.StringP("config", "c", "", "path to a config file (default: pinchvol.yaml in . or ~/.pinchvol)")
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.LogLevel)
	log.Info("PinchVol - pinch gesture volume control")

	dataDir, err := resolveDataDir(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "pinchvol.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	tuning := effectiveGesture(cfg.Gesture, st)

	sess := session.New()
	sess.SetMillimetersPerPixel(tuning.MmPerPixel)

	camera := capture.NewCamera(capture.Config{
		DeviceID: cfg.Camera.ID,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		FPS:      cfg.Camera.FPS,
	})

	var det detector.Detector
	mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        1,
		MinConfidence:   cfg.Detect.MinConfidence,
		MinTrackingConf: cfg.Detect.MinTrackingConf,
	})
	if err != nil {
		log.WithError(err).Warn("MediaPipe not available, no hands will be detected")
		det = detector.NewMockDetector()
	} else {
		det = mp
	}

	a := app.New(app.Config{
		Camera:     camera,
		Detector:   det,
		Session:    sess,
		Classifier: &gesture.RobustClassifier{NearThreshold: tuning.NearThreshold},
		Smoother: gesture.SmootherConfig{
			PinchLow:       tuning.PinchLow,
			PinchHigh:      tuning.PinchHigh,
			Window:         tuning.Window,
			ResetOnRelease: tuning.ResetOnRelease,
		},
		Mirror:   true,
		Annotate: true,
	})
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start camera: %v", err)
	}
	defer a.Stop()

	if cfg.AutoStart {
		sess.Start()
	}

	webDir := findWebDir(cfg.StaticDir)
	if webDir != "" {
		log.WithField("dir", webDir).Info("Serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Session:   sess,
		Frames:    a.Frames(),
		Store:     st,
		Gesture:   cfg.Gesture,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sink := newOutputSink(cfg.Output, dataDir); sink != nil {
		sess.OnChange(sink.Observe)
		go sink.Run(ctx)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe(ctx, cfg.Addr)
	}()

	if cfg.Tray {
		runTray(ctx, stop, sess, dashboardURL(cfg.Addr))
	} else {
		<-ctx.Done()
	}
	stop()

	if err := <-serverErr; err != nil {
		log.WithError(err).Error("Server failed")
	}
	log.Info("Shutting down")
}

// runTray blocks on the tray loop until the user quits or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, sess *session.State, url string) {
	t := tray.New(sess.Running())
	sess.OnChange(t.SetStatus)

	t.OnToggle(func(running bool) {
		if running {
			sess.Start()
		} else {
			sess.Pause()
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.WithError(err).Warn("Failed to open browser")
		}
	})
	t.OnQuit(stop)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

// newOutputSink returns nil when no output plugin is configured or it cannot be used.
func newOutputSink(cfg config.OutputConfig, dataDir string) *output.Sink {
	if cfg.Plugin == "" {
		return nil
	}

	dir := cfg.PluginDir
	if dir == "" {
		dir = filepath.Join(dataDir, "plugins")
	}
	mgr := output.NewManager(dir)
	if err := mgr.Discover(); err != nil {
		log.WithError(err).WithField("dir", dir).Warn("Failed to scan plugins, volume output disabled")
		return nil
	}

	p, err := mgr.Find(cfg.Plugin, output.ActionSetVolume)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Warn("Volume output disabled")
		return nil
	}

	log.WithFields(log.Fields{"plugin": p.Manifest.Name, "version": p.Manifest.Version}).Info("Volume output enabled")
	executor := output.NewExecutor(time.Duration(cfg.TimeoutMs) * time.Millisecond)
	return output.NewSink(output.PluginApplier{Executor: executor, Plugin: p})
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// effectiveGesture layers settings saved through the API over the file/env tuning.
func effectiveGesture(base config.GestureConfig, st *store.Store) config.GestureConfig {
	stored, err := st.Settings().All()
	if err != nil {
		log.WithError(err).Warn("Failed to read stored settings")
		return base
	}
	tuning, err := base.WithSettings(stored)
	if err != nil {
		log.WithError(err).Warn("Ignoring invalid stored settings")
		return base
	}
	if len(stored) > 0 {
		log.WithField("settings", stored).Info("Applied stored settings")
	}
	return tuning
}

func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".pinchvol")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// findWebDir returns configured if set, otherwise the first of "web",
// "../web", "../../web" and ~/.pinchvol/web that exists.
func findWebDir(configured string) string {
	if configured != "" {
		return configured
	}

	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".pinchvol", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
