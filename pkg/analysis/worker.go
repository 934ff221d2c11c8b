// Package analysis runs the detection and scoring pipeline against the most
// recent captured frame and publishes results for the overlay, the dashboard,
// and persistence.
package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/visagekit/visage/internal/log"
	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
	"github.com/visagekit/visage/pkg/health"
	"github.com/visagekit/visage/pkg/measure"
	"github.com/visagekit/visage/pkg/metrics"
	"github.com/visagekit/visage/pkg/storage"
)

// idlePoll is how long the worker sleeps when no frame has arrived yet.
const idlePoll = 5 * time.Millisecond

// Worker consumes frames from the shared slot, runs one full analysis cycle
// per frame, and fans results out to the queue, the trend history, and the
// latest-result snapshot. A failed cycle is logged and skipped; the loop
// keeps running.
type Worker struct {
	slot      *frame.Slot
	detector  detect.Detector
	extractor measure.Extractor
	analyzer  *health.Analyzer
	queue     *storage.Queue
	metrics   *metrics.Metrics
	session   *Session
	rate      *metrics.RateTracker

	mu        sync.Mutex
	history   *health.History
	latest    storage.SessionResult
	hasLatest bool
}

// NewWorker wires the pipeline stages together.
func NewWorker(slot *frame.Slot, d detect.Detector, e measure.Extractor, q *storage.Queue, m *metrics.Metrics, s *Session) *Worker {
	return &Worker{
		slot:      slot,
		detector:  d,
		extractor: e,
		analyzer:  health.NewAnalyzer(),
		queue:     q,
		metrics:   m,
		session:   s,
		rate:      metrics.NewRateTracker(),
		history:   health.NewHistory(),
	}
}

// Run processes frames until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	log.Info("analysis worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("analysis worker stopped")
			return
		default:
		}

		f, ok := w.slot.TakeLatest()
		if !ok {
			time.Sleep(idlePoll)
			continue
		}
		w.cycle(f)
	}
}

// cycle runs detection, session bookkeeping, and, when a face is present,
// the full measurement and scoring pass for one frame.
func (w *Worker) cycle(f frame.Frame) {
	start := time.Now()

	regions, err := w.detector.Detect(f)
	if err != nil {
		w.metrics.AnalysisErrors.Add(1)
		log.Warn("face detection failed", "seq", f.Seq, "error", err)
		return
	}
	w.metrics.FramesAnalyzed.Add(1)
	w.metrics.SetAnalysisFPS(w.rate.Tick())

	primary, found := detect.Primary(regions)
	if found {
		w.metrics.FacesDetected.Add(1)
	} else {
		w.metrics.NoFaceFrames.Add(1)
	}

	if capture, ok := w.session.Note(f, primary, found); ok {
		w.finishSession(capture)
	}

	if !found {
		return
	}

	res, err := w.analyze(f, primary)
	if err != nil {
		w.metrics.AnalysisErrors.Add(1)
		log.Warn("analysis cycle failed", "seq", f.Seq, "error", err)
		return
	}

	w.mu.Lock()
	w.history.Observe(res.Health)
	w.latest = res
	w.hasLatest = true
	w.mu.Unlock()

	w.enqueue(res)
	w.metrics.ObserveAnalyzeLatency(time.Since(start))
}

// finishSession analyzes the frame a capture countdown selected.
func (w *Worker) finishSession(c Capture) {
	res, err := w.analyze(c.Frame, c.Region)
	if err != nil {
		log.Warn("captured frame analysis failed", "seq", c.Frame.Seq, "error", err)
		w.session.Fail()
		return
	}
	w.session.SetResult(res)
	w.enqueue(res)
	log.Info("capture session complete",
		"seq", c.Frame.Seq,
		"score", res.Assessment.Score,
		"status", res.Assessment.Status)
}

func (w *Worker) analyze(f frame.Frame, r detect.Region) (storage.SessionResult, error) {
	bundle, err := w.extractor.Extract(f, r)
	if err != nil {
		return storage.SessionResult{}, err
	}
	indicators := w.analyzer.Analyze(bundle)
	assessment := health.Aggregate(indicators)
	recs := health.Recommend(indicators, assessment)
	return storage.NewSessionResult(f.Seq, bundle, indicators, assessment, recs), nil
}

func (w *Worker) enqueue(res storage.SessionResult) {
	w.queue.Enqueue(res)
	w.metrics.ResultsQueued.Add(1)
}

// Latest returns the most recent analysis result.
func (w *Worker) Latest() (storage.SessionResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest, w.hasLatest
}

// Trends returns the per-metric trend directions accumulated so far.
func (w *Worker) Trends() map[string]health.Trend {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Trends()
}

// HistoryValues returns the recorded values for one tracked metric.
func (w *Worker) HistoryValues(name string) []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if win := w.history.Window(name); win != nil {
		return win.Values()
	}
	return nil
}
