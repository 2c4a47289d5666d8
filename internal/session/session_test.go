package session

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/pinchvol/internal/gesture"
)

func TestNew(t *testing.T) {
	s := New()
	snap := s.Snapshot()

	if snap.Running {
		t.Error("new session should be paused")
	}
	if snap.Gesture != gesture.Inactive {
		t.Errorf("gesture = %v, want Inactive", snap.Gesture)
	}
}

func TestState_StartPause(t *testing.T) {
	s := New()

	s.Start()
	if !s.Running() {
		t.Fatal("expected running after Start")
	}

	s.Publish(FrameResult{HandObserved: true, Gesture: gesture.OpenHand, Confidence: 0.9})
	if got := s.Snapshot().Gesture; got != gesture.OpenHand {
		t.Fatalf("gesture = %v, want Open Hand", got)
	}

	s.Pause()
	snap := s.Snapshot()
	if snap.Running {
		t.Error("expected paused after Pause")
	}
	if snap.Gesture != gesture.Inactive {
		t.Errorf("gesture after Pause = %v, want Inactive", snap.Gesture)
	}
}

func TestState_PublishWhilePausedIsDropped(t *testing.T) {
	s := New()
	before := s.Snapshot()

	s.Publish(FrameResult{HandObserved: true, Gesture: gesture.Pinch, Volume: 70, Latency: 9 * time.Millisecond})

	if after := s.Snapshot(); after != before {
		t.Errorf("snapshot changed while paused: %+v -> %+v", before, after)
	}
}

func TestState_PublishHand(t *testing.T) {
	s := New()
	s.Start()

	s.Publish(FrameResult{
		HandObserved:  true,
		Gesture:       gesture.Pinch,
		PinchDistance: 123.9,
		Confidence:    0.98765,
		Volume:        64,
		Latency:       17 * time.Millisecond,
	})

	snap := s.Snapshot()
	if snap.Gesture != gesture.Pinch {
		t.Errorf("gesture = %v, want Pinch", snap.Gesture)
	}
	if snap.Volume != 64 {
		t.Errorf("volume = %d, want 64", snap.Volume)
	}
	if snap.FingerDistanceMm != 30 {
		t.Errorf("finger distance = %d, want 30", snap.FingerDistanceMm)
	}
	if snap.AccuracyPercent != 98.8 {
		t.Errorf("accuracy = %v, want 98.8", snap.AccuracyPercent)
	}
	if snap.ResponseTimeMs != 17 {
		t.Errorf("response time = %d, want 17", snap.ResponseTimeMs)
	}
}

func TestState_VolumeOnlyOnPinch(t *testing.T) {
	s := New()
	s.Start()
	s.Publish(FrameResult{HandObserved: true, Gesture: gesture.Pinch, Volume: 40})

	for _, g := range []gesture.State{gesture.OpenHand, gesture.Closed} {
		s.Publish(FrameResult{HandObserved: true, Gesture: g, Volume: 99, PinchDistance: 200, Confidence: 0.8})
		snap := s.Snapshot()
		if snap.Volume != 40 {
			t.Errorf("%v: volume = %d, want 40", g, snap.Volume)
		}
		if snap.FingerDistanceMm != 50 {
			t.Errorf("%v: finger distance = %d, want 50", g, snap.FingerDistanceMm)
		}
	}
}

func TestState_NoHandKeepsReadings(t *testing.T) {
	s := New()
	s.Start()
	s.Publish(FrameResult{
		HandObserved:  true,
		Gesture:       gesture.Pinch,
		PinchDistance: 80,
		Confidence:    0.91,
		Volume:        37,
		Latency:       12 * time.Millisecond,
	})
	prev := s.Snapshot()

	s.Publish(FrameResult{HandObserved: false, Latency: 4 * time.Millisecond})
	snap := s.Snapshot()

	if snap.Gesture != gesture.Inactive {
		t.Errorf("gesture = %v, want Inactive", snap.Gesture)
	}
	if snap.Volume != prev.Volume || snap.FingerDistanceMm != prev.FingerDistanceMm || snap.AccuracyPercent != prev.AccuracyPercent {
		t.Errorf("readings changed without a hand: %+v -> %+v", prev, snap)
	}
	if snap.ResponseTimeMs != 4 {
		t.Errorf("response time = %d, want 4", snap.ResponseTimeMs)
	}
}

func TestState_SetMillimetersPerPixel(t *testing.T) {
	s := New()
	s.SetMillimetersPerPixel(0.5)
	s.SetMillimetersPerPixel(-1)
	s.Start()
	s.Publish(FrameResult{HandObserved: true, Gesture: gesture.OpenHand, PinchDistance: 100})

	if got := s.Snapshot().FingerDistanceMm; got != 50 {
		t.Errorf("finger distance = %d, want 50", got)
	}
}

func TestState_OnChange(t *testing.T) {
	s := New()
	var got []Snapshot
	s.OnChange(func(snap Snapshot) { got = append(got, snap) })

	s.Start()
	s.Publish(FrameResult{HandObserved: true, Gesture: gesture.Closed})
	s.Pause()
	s.Publish(FrameResult{HandObserved: true, Gesture: gesture.Closed}) // dropped

	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	if got[1].Gesture != gesture.Closed || got[2].Running {
		t.Errorf("unexpected notifications %+v", got)
	}
}

func TestState_OnChangeOrderUnderContention(t *testing.T) {
	s := New()

	var mu sync.Mutex
	var last Snapshot
	var seen int
	s.OnChange(func(snap Snapshot) {
		mu.Lock()
		last = snap
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Publish(FrameResult{HandObserved: true, Gesture: gesture.Pinch, Volume: i % 100})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Start()
			s.Pause()
		}
	}()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if seen == 0 {
		t.Fatal("no notifications")
	}
	// The final Pause is the last store; a Publish racing it must not be
	// delivered after it.
	if last != s.Snapshot() {
		t.Errorf("last delivered %+v, stored %+v", last, s.Snapshot())
	}
	if last.Running {
		t.Errorf("last delivered snapshot is running after the final Pause: %+v", last)
	}
}

func TestSnapshot_JSON(t *testing.T) {
	data, err := json.Marshal(Snapshot{
		Running:          true,
		Gesture:          gesture.OpenHand,
		Volume:           12,
		FingerDistanceMm: 7,
		AccuracyPercent:  93.4,
		ResponseTimeMs:   21,
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"is_running":true,"current_gesture":"Open Hand","current_volume":12,"finger_distance_mm":7,"accuracy":93.4,"response_time_ms":21}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}
}

func TestState_ConcurrentReaders(t *testing.T) {
	s := New()
	s.Start()

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := s.Snapshot()
				// Every published Pinch frame carries volume == distance in mm.
				if snap.Gesture == gesture.Pinch && snap.Volume != snap.FingerDistanceMm {
					t.Errorf("torn snapshot: %+v", snap)
					return
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		v := i % 100
		s.Publish(FrameResult{
			HandObserved:  true,
			Gesture:       gesture.Pinch,
			PinchDistance: float64(v) * 4,
			Volume:        v,
		})
	}
	close(done)
	wg.Wait()
}
