package metrics

import "time"

// RateTracker estimates a per-second event rate over one-second windows. It
// is for single-goroutine use; each loop keeps its own tracker.
type RateTracker struct {
	now   func() time.Time
	start time.Time
	count int
	fps   float64
}

// NewRateTracker returns a tracker using the wall clock.
func NewRateTracker() *RateTracker {
	return &RateTracker{now: time.Now}
}

// Tick records one event and returns the current rate estimate. The estimate
// holds the previous window's rate until a full second has elapsed.
func (r *RateTracker) Tick() float64 {
	now := r.now()
	if r.start.IsZero() {
		r.start = now
	}
	r.count++

	if elapsed := now.Sub(r.start); elapsed >= time.Second {
		r.fps = float64(r.count) / elapsed.Seconds()
		r.start = now
		r.count = 0
	}
	return r.fps
}
