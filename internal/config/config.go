// Package config loads runtime configuration from the environment, an optional
// config file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
	DataDir   string `mapstructure:"data_dir"`
	LogLevel  string `mapstructure:"log_level"`
	Tray      bool   `mapstructure:"tray"`
	AutoStart bool   `mapstructure:"auto_start"`

	Camera  CameraConfig  `mapstructure:"camera"`
	Gesture GestureConfig `mapstructure:"gesture"`
	Detect  DetectConfig  `mapstructure:"detect"`
	Output  OutputConfig  `mapstructure:"output"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	ID     int `mapstructure:"id"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	FPS    int `mapstructure:"fps"`
}

// GestureConfig tunes classification and smoothing. Pixel values assume 640x480.
type GestureConfig struct {
	PinchLow       float64 `mapstructure:"pinch_low"`
	PinchHigh      float64 `mapstructure:"pinch_high"`
	NearThreshold  float64 `mapstructure:"near_threshold"`
	Window         int     `mapstructure:"window"`
	ResetOnRelease bool    `mapstructure:"reset_on_release"`
	MmPerPixel     float64 `mapstructure:"mm_per_pixel"`
}

// DetectConfig tunes the landmark detector.
type DetectConfig struct {
	MinConfidence   float64 `mapstructure:"min_confidence"`
	MinTrackingConf float64 `mapstructure:"min_tracking_confidence"`
}

// OutputConfig selects the plugin that applies the volume to the OS mixer.
// An empty Plugin disables output.
type OutputConfig struct {
	Plugin    string `mapstructure:"plugin"`
	PluginDir string `mapstructure:"plugin_dir"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// EnvPrefix prefixes every environment override, e.g. PINCHVOL_GESTURE_PINCH_LOW.
const EnvPrefix = "PINCHVOL"

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":5000")
	v.SetDefault("static_dir", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("tray", false)
	v.SetDefault("auto_start", false)

	v.SetDefault("camera.id", 0)
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.fps", 30)

	v.SetDefault("gesture.pinch_low", 20.0)
	v.SetDefault("gesture.pinch_high", 180.0)
	v.SetDefault("gesture.near_threshold", 30.0)
	v.SetDefault("gesture.window", 5)
	v.SetDefault("gesture.reset_on_release", true)
	v.SetDefault("gesture.mm_per_pixel", 0.25)

	v.SetDefault("detect.min_confidence", 0.7)
	v.SetDefault("detect.min_tracking_confidence", 0.7)

	v.SetDefault("output.plugin", "")
	v.SetDefault("output.plugin_dir", "")
	v.SetDefault("output.timeout_ms", 2000)
}

// Load reads configuration. configFile may be empty, in which case
// pinchvol.yaml is looked up in the working directory and ~/.pinchvol.
func Load(configFile string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("pinchvol")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pinchvol")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot work with.
func (c Config) Validate() error {
	if err := c.Gesture.Validate(); err != nil {
		return err
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalid, c.Camera.Width, c.Camera.Height)
	}
	if c.Detect.MinConfidence < 0 || c.Detect.MinConfidence > 1 {
		return fmt.Errorf("%w: detect.min_confidence %v not in [0,1]", ErrInvalid, c.Detect.MinConfidence)
	}
	if c.Detect.MinTrackingConf < 0 || c.Detect.MinTrackingConf > 1 {
		return fmt.Errorf("%w: detect.min_tracking_confidence %v not in [0,1]", ErrInvalid, c.Detect.MinTrackingConf)
	}
	if c.Output.Plugin != "" && c.Output.TimeoutMs <= 0 {
		return fmt.Errorf("%w: output.timeout_ms must be positive, got %d", ErrInvalid, c.Output.TimeoutMs)
	}
	return nil
}

// Validate checks the gesture tuning on its own; persisted settings reuse it.
func (g GestureConfig) Validate() error {
	for _, f := range []struct {
		key string
		v   float64
	}{
		{"gesture.pinch_low", g.PinchLow},
		{"gesture.pinch_high", g.PinchHigh},
		{"gesture.near_threshold", g.NearThreshold},
		{"gesture.mm_per_pixel", g.MmPerPixel},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalid, f.key, f.v)
		}
	}
	if g.PinchHigh <= g.PinchLow {
		return fmt.Errorf("%w: gesture.pinch_high (%v) must exceed gesture.pinch_low (%v)", ErrInvalid, g.PinchHigh, g.PinchLow)
	}
	if g.Window < 1 {
		return fmt.Errorf("%w: gesture.window must be at least 1, got %d", ErrInvalid, g.Window)
	}
	if g.NearThreshold <= 0 {
		return fmt.Errorf("%w: gesture.near_threshold must be positive, got %v", ErrInvalid, g.NearThreshold)
	}
	if g.MmPerPixel <= 0 {
		return fmt.Errorf("%w: gesture.mm_per_pixel must be positive, got %v", ErrInvalid, g.MmPerPixel)
	}
	return nil
}
