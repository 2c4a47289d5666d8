package config

import (
	"fmt"
	"strconv"
)

// Setting keys for gesture tuning that may be persisted and edited at runtime.
const (
	KeyPinchLow       = "pinch_low"
	KeyPinchHigh      = "pinch_high"
	KeyNearThreshold  = "near_threshold"
	KeyWindow         = "window"
	KeyResetOnRelease = "reset_on_release"
	KeyMmPerPixel     = "mm_per_pixel"
)

// Settings flattens the gesture tuning into string key-value pairs.
func (g GestureConfig) Settings() map[string]string {
	return map[string]string{
		KeyPinchLow:       strconv.FormatFloat(g.PinchLow, 'f', -1, 64),
		KeyPinchHigh:      strconv.FormatFloat(g.PinchHigh, 'f', -1, 64),
		KeyNearThreshold:  strconv.FormatFloat(g.NearThreshold, 'f', -1, 64),
		KeyWindow:         strconv.Itoa(g.Window),
		KeyResetOnRelease: strconv.FormatBool(g.ResetOnRelease),
		KeyMmPerPixel:     strconv.FormatFloat(g.MmPerPixel, 'f', -1, 64),
	}
}

// WithSettings returns a copy of g with the given settings applied. Unknown keys
// and unparsable values are rejected, and so is a result that fails Validate.
func (g GestureConfig) WithSettings(settings map[string]string) (GestureConfig, error) {
	out := g
	for k, v := range settings {
		var err error
		switch k {
		case KeyPinchLow:
			out.PinchLow, err = strconv.ParseFloat(v, 64)
		case KeyPinchHigh:
			out.PinchHigh, err = strconv.ParseFloat(v, 64)
		case KeyNearThreshold:
			out.NearThreshold, err = strconv.ParseFloat(v, 64)
		case KeyWindow:
			out.Window, err = strconv.Atoi(v)
		case KeyResetOnRelease:
			out.ResetOnRelease, err = strconv.ParseBool(v)
		case KeyMmPerPixel:
			out.MmPerPixel, err = strconv.ParseFloat(v, 64)
		default:
			return g, fmt.Errorf("%w: unknown setting %q", ErrInvalid, k)
		}
		if err != nil {
			return g, fmt.Errorf("%w: setting %s=%q: %v", ErrInvalid, k, v, err)
		}
	}

	if err := out.Validate(); err != nil {
		return g, err
	}
	return out, nil
}
