package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ayusman/pinchvol/internal/geom"
)

const epsilon = 1e-6

func TestHandLandmarks_ToPixels(t *testing.T) {
	t.Run("scales by frame size", func(t *testing.T) {
		hand := HandLandmarks{}
		hand.Points[Wrist] = Point3D{X: 0.5, Y: 0.25, Z: 0.3}
		hand.Points[IndexTip] = Point3D{X: 1, Y: 1}

		px := hand.ToPixels(640, 480)

		if px[Wrist] != (geom.Point{X: 320, Y: 120}) {
			t.Errorf("wrist = %+v, want {320 120}", px[Wrist])
		}
		if px[IndexTip] != (geom.Point{X: 640, Y: 480}) {
			t.Errorf("index tip = %+v, want {640 480}", px[IndexTip])
		}
	})

	t.Run("nil hand returns zero points", func(t *testing.T) {
		var hand *HandLandmarks
		px := hand.ToPixels(640, 480)
		for i, p := range px {
			if p != (geom.Point{}) {
				t.Fatalf("point %d = %+v, want zero", i, p)
			}
		}
	})
}

func TestPrimary(t *testing.T) {
	if Primary(nil) != nil {
		t.Error("expected nil for no hands")
	}

	open := OpenHandLandmarks()
	fist := FistLandmarks()
	got := Primary([]HandLandmarks{open, fist})
	if got == nil {
		t.Fatal("expected a hand")
	}
	if got.Points != open.Points {
		t.Error("expected the first hand to be primary")
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenHandLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func pinchDistance(h HandLandmarks) float64 {
	px := h.ToPixels(FixtureWidth, FixtureHeight)
	return geom.Distance(px[ThumbTip], px[IndexTip])
}

func TestFixtures(t *testing.T) {
	t.Run("open hand thumb is spread wide", func(t *testing.T) {
		d := pinchDistance(OpenHandLandmarks())
		if d < 190 || d > 210 {
			t.Errorf("open hand pinch distance = %f, want about 200", d)
		}
	})

	t.Run("WithPinchDistance places thumb exactly", func(t *testing.T) {
		for _, want := range []float64{0, 20, 29.5, 100, 180} {
			h := WithPinchDistance(OpenHandLandmarks(), want, FixtureWidth, FixtureHeight)
			if d := pinchDistance(h); math.Abs(d-want) > epsilon {
				t.Errorf("pinch distance = %f, want %f", d, want)
			}
		}
	})

	t.Run("fixtures are confident right hands", func(t *testing.T) {
		for name, h := range map[string]HandLandmarks{
			"open":     OpenHandLandmarks(),
			"fist":     FistLandmarks(),
			"pointing": PointingLandmarks(),
		} {
			if h.Handedness != "Right" || h.Score < 0.9 {
				t.Errorf("%s: handedness %q score %f", name, h.Handedness, h.Score)
			}
		}
	})
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0xff, 0xd8, 0x01, 0x02}

	if err := writeFrame(&buf, payload); err != nil {
		t.Fatalf("writeFrame() error = %v", err)
	}

	out := buf.Bytes()
	if got := binary.BigEndian.Uint32(out[:4]); got != uint32(len(payload)) {
		t.Errorf("length prefix = %d, want %d", got, len(payload))
	}
	if !bytes.Equal(out[4:], payload) {
		t.Errorf("payload = %v, want %v", out[4:], payload)
	}
}

func TestDecodeResponse(t *testing.T) {
	points := make([]string, NumLandmarks)
	for i := range points {
		points[i] = `{"x":0.5,"y":0.5,"z":0}`
	}
	hand := func(score string) string {
		return `{"points":[` + strings.Join(points, ",") + `],"handedness":"Left","score":` + score + `}`
	}

	t.Run("filters low confidence hands", func(t *testing.T) {
		line := []byte(`{"hands":[` + hand("0.95") + `,` + hand("0.4") + `]}`)

		hands, err := decodeResponse(line, 0.7)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" || hands[0].Score != 0.95 {
			t.Errorf("unexpected hand %+v", hands[0])
		}
		if hands[0].Points[PinkyTip].X != 0.5 {
			t.Errorf("expected landmarks to be copied")
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}`), 0.7)
		if err != nil || len(hands) != 0 {
			t.Errorf("expected no hands and no error, got %v, %v", hands, err)
		}
	})

	t.Run("rejects truncated hands", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"hands":[{"points":[{"x":0,"y":0,"z":0}],"score":0.9}]}`), 0.7)
		if err == nil {
			t.Error("expected error for truncated landmark list")
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"error":"model failed"}`), 0.7)
		if err == nil || !strings.Contains(err.Error(), "model failed") {
			t.Errorf("expected service error, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`not json`), 0.7); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.7 || cfg.MinTrackingConf != 0.7 {
		t.Errorf("confidence thresholds = %v/%v, want 0.7/0.7", cfg.MinConfidence, cfg.MinTrackingConf)
	}
}
