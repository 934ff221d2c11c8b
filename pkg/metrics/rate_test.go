package metrics

import (
	"testing"
	"time"
)

func TestRateTrackerWindow(t *testing.T) {
	clock := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	r := &RateTracker{now: func() time.Time { return clock }}

	// First window: no estimate until a second has passed.
	for i := 0; i < 10; i++ {
		if fps := r.Tick(); fps != 0 {
			t.Fatalf("tick %d: got %v before first window closed, want 0", i, fps)
		}
		clock = clock.Add(50 * time.Millisecond)
	}

	// Closing the window yields the observed rate.
	clock = clock.Add(time.Second)
	fps := r.Tick()
	if fps < 7 || fps > 8 {
		t.Errorf("got %v fps, want roughly 11 ticks over 1.5s", fps)
	}

	// The estimate holds inside the next window.
	clock = clock.Add(10 * time.Millisecond)
	if next := r.Tick(); next != fps {
		t.Errorf("estimate changed mid-window: %v != %v", next, fps)
	}
}
