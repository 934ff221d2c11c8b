package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
	"github.com/visagekit/visage/pkg/health"
	"github.com/visagekit/visage/pkg/measure"
	"github.com/visagekit/visage/pkg/metrics"
	"github.com/visagekit/visage/pkg/storage"
)

type fakeDetector struct {
	regions []detect.Region
	err     error
}

func (d *fakeDetector) Detect(frame.Frame) ([]detect.Region, error) { return d.regions, d.err }
func (d *fakeDetector) Close() error                                { return nil }

type fakeExtractor struct {
	bundle measure.Bundle
	err    error
}

func (e *fakeExtractor) Extract(frame.Frame, detect.Region) (measure.Bundle, error) {
	return e.bundle, e.err
}

func symmetricBundle(v float64) measure.Bundle {
	var b measure.Bundle
	b.Symmetry.Overall = measure.Some(v)
	return b
}

func newTestWorker(d detect.Detector, e measure.Extractor) (*Worker, *storage.Queue) {
	q := storage.NewQueue()
	w := NewWorker(frame.NewSlot(), d, e, q, metrics.New(), NewSession(time.Second))
	return w, q
}

func TestCycleProducesResult(t *testing.T) {
	det := &fakeDetector{regions: []detect.Region{region(120, 150)}}
	w, q := newTestWorker(det, &fakeExtractor{bundle: symmetricBundle(0.9)})

	w.cycle(testFrame(7))

	res, ok := w.Latest()
	if !ok {
		t.Fatal("cycle with a face should publish a result")
	}
	if res.FrameSeq != 7 {
		t.Errorf("frame seq = %d, want 7", res.FrameSeq)
	}
	if res.Assessment.Score != 9.0 {
		t.Errorf("score = %v, want 9.0 from symmetry 0.9 alone", res.Assessment.Score)
	}
	if res.Assessment.Status != health.StatusExcellent {
		t.Errorf("status = %v, want excellent", res.Assessment.Status)
	}
	if len(res.Recommendations) == 0 {
		t.Error("recommendations must never be empty")
	}
	if got := len(q.Drain()); got != 1 {
		t.Errorf("queued %d results, want 1", got)
	}
	if w.metrics.FacesDetected.Load() != 1 {
		t.Errorf("faces detected = %d, want 1", w.metrics.FacesDetected.Load())
	}
}

func TestCycleNoFace(t *testing.T) {
	w, q := newTestWorker(&fakeDetector{}, &fakeExtractor{})

	w.cycle(testFrame(1))

	if _, ok := w.Latest(); ok {
		t.Error("no face, no result")
	}
	if got := len(q.Drain()); got != 0 {
		t.Errorf("queued %d results, want 0", got)
	}
	if w.metrics.NoFaceFrames.Load() != 1 {
		t.Errorf("no-face frames = %d, want 1", w.metrics.NoFaceFrames.Load())
	}
}

func TestCycleSurvivesDetectorError(t *testing.T) {
	w, q := newTestWorker(&fakeDetector{err: errors.New("model not loaded")}, &fakeExtractor{})

	w.cycle(testFrame(1))
	w.cycle(testFrame(2))

	if w.metrics.AnalysisErrors.Load() != 2 {
		t.Errorf("analysis errors = %d, want 2", w.metrics.AnalysisErrors.Load())
	}
	if got := len(q.Drain()); got != 0 {
		t.Errorf("queued %d results, want 0", got)
	}
}

func TestCycleSurvivesExtractorError(t *testing.T) {
	det := &fakeDetector{regions: []detect.Region{region(100, 100)}}
	w, q := newTestWorker(det, &fakeExtractor{err: errors.New("bad crop")})

	w.cycle(testFrame(1))

	if _, ok := w.Latest(); ok {
		t.Error("failed extraction must not publish a result")
	}
	if w.metrics.AnalysisErrors.Load() != 1 {
		t.Errorf("analysis errors = %d, want 1", w.metrics.AnalysisErrors.Load())
	}
	if got := len(q.Drain()); got != 0 {
		t.Errorf("queued %d results, want 0", got)
	}
}

func TestCycleFeedsHistory(t *testing.T) {
	det := &fakeDetector{regions: []detect.Region{region(100, 100)}}
	w, _ := newTestWorker(det, &fakeExtractor{bundle: symmetricBundle(0.85)})

	for i := 0; i < 12; i++ {
		w.cycle(testFrame(uint64(i)))
	}

	vals := w.HistoryValues(health.MetricSymmetry)
	if len(vals) != 12 {
		t.Fatalf("history has %d samples, want 12", len(vals))
	}
	trends := w.Trends()
	if trends[health.MetricSymmetry] != health.TrendStable {
		t.Errorf("constant symmetry trend = %v, want stable", trends[health.MetricSymmetry])
	}
}

func TestCycleCompletesArmedSession(t *testing.T) {
	det := &fakeDetector{regions: []detect.Region{region(100, 100)}}
	w, q := newTestWorker(det, &fakeExtractor{bundle: symmetricBundle(0.9)})

	clock := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	w.session.now = func() time.Time { return clock }
	w.session.Trigger()

	w.cycle(testFrame(1))
	clock = clock.Add(2 * time.Second)
	w.cycle(testFrame(2))

	res, ok := w.session.Result()
	if !ok {
		t.Fatal("expired countdown should produce a session result")
	}
	if res.FrameSeq != 1 {
		t.Errorf("captured frame seq = %d, want 1 (frame tracked during countdown)", res.FrameSeq)
	}
	state, _ := w.session.State()
	if state != SessionCaptured {
		t.Errorf("state = %v, want captured", state)
	}
	// One result from the session capture plus one per analyzed frame.
	if got := len(q.Drain()); got != 3 {
		t.Errorf("queued %d results, want 3", got)
	}
}
