package config

import (
	"errors"
	"testing"
)

func defaultGesture() GestureConfig {
	return GestureConfig{
		PinchLow:       20,
		PinchHigh:      180,
		NearThreshold:  30,
		Window:         5,
		ResetOnRelease: true,
		MmPerPixel:     0.25,
	}
}

func TestGestureConfig_SettingsRoundTrip(t *testing.T) {
	g := defaultGesture()

	back, err := GestureConfig{}.WithSettings(g.Settings())
	if err != nil {
		t.Fatalf("WithSettings() error = %v", err)
	}
	if back != g {
		t.Errorf("round trip = %+v, want %+v", back, g)
	}
}

func TestGestureConfig_WithSettings(t *testing.T) {
	g := defaultGesture()

	got, err := g.WithSettings(map[string]string{
		KeyPinchHigh:      "220",
		KeyResetOnRelease: "false",
	})
	if err != nil {
		t.Fatalf("WithSettings() error = %v", err)
	}
	if got.PinchHigh != 220 || got.ResetOnRelease {
		t.Errorf("settings not applied: %+v", got)
	}
	if got.PinchLow != 20 || got.Window != 5 {
		t.Errorf("untouched values changed: %+v", got)
	}
	if g.PinchHigh != 180 {
		t.Error("receiver must not be modified")
	}
}

func TestGestureConfig_WithSettingsRejects(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]string
	}{
		{"unknown key", map[string]string{"volume_direction": "up"}},
		{"bad float", map[string]string{KeyPinchLow: "twenty"}},
		{"bad int", map[string]string{KeyWindow: "2.5"}},
		{"bad bool", map[string]string{KeyResetOnRelease: "maybe"}},
		{"invalid result", map[string]string{KeyPinchLow: "500"}},
		{"NaN float", map[string]string{KeyPinchLow: "NaN"}},
		{"infinite float", map[string]string{KeyMmPerPixel: "Inf"}},
		{"positive infinity threshold", map[string]string{KeyNearThreshold: "+Inf"}},
		{"negative infinity low", map[string]string{KeyPinchLow: "-Inf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := defaultGesture()
			got, err := g.WithSettings(tt.settings)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("WithSettings() error = %v, want ErrInvalid", err)
			}
			if got != g {
				t.Errorf("failed WithSettings should return the original, got %+v", got)
			}
		})
	}
}
