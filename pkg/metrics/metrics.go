// Package metrics tracks pipeline counters with atomics and exposes them as a
// Prometheus registry. Hot paths only touch atomics; collection happens at
// scrape time.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all pipeline counters.
type Metrics struct {
	// Capture side
	FramesCaptured atomic.Uint64
	CaptureErrors  atomic.Uint64

	// Analysis side
	FramesAnalyzed atomic.Uint64
	FacesDetected  atomic.Uint64
	NoFaceFrames   atomic.Uint64
	AnalysisErrors atomic.Uint64

	// Persistence
	ResultsQueued atomic.Uint64
	ResultsSaved  atomic.Uint64

	// Latency and rate (milliseconds, frames-per-second x100)
	AnalyzeLatencyMs atomic.Uint64
	CaptureFPSx100   atomic.Uint64
	AnalysisFPSx100  atomic.Uint64

	registry *prometheus.Registry
}

// New creates the metrics set and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.register()
	return m
}

func (m *Metrics) register() {
	gauges := []struct {
		name string
		help string
		read func() float64
	}{
		{"visage_frames_captured_total", "Total frames read from the camera",
			func() float64 { return float64(m.FramesCaptured.Load()) }},
		{"visage_capture_errors_total", "Total camera read errors",
			func() float64 { return float64(m.CaptureErrors.Load()) }},
		{"visage_frames_analyzed_total", "Total frames run through the analysis pipeline",
			func() float64 { return float64(m.FramesAnalyzed.Load()) }},
		{"visage_faces_detected_total", "Total frames where a primary face was found",
			func() float64 { return float64(m.FacesDetected.Load()) }},
		{"visage_no_face_frames_total", "Total analyzed frames with no face",
			func() float64 { return float64(m.NoFaceFrames.Load()) }},
		{"visage_analysis_errors_total", "Total analysis cycle errors",
			func() float64 { return float64(m.AnalysisErrors.Load()) }},
		{"visage_results_queued_total", "Total session results enqueued for persistence",
			func() float64 { return float64(m.ResultsQueued.Load()) }},
		{"visage_results_saved_total", "Total session results persisted",
			func() float64 { return float64(m.ResultsSaved.Load()) }},
		{"visage_analyze_latency_ms", "Latency of the last analysis cycle in milliseconds",
			func() float64 { return float64(m.AnalyzeLatencyMs.Load()) }},
		{"visage_capture_fps", "Camera read rate in frames per second",
			func() float64 { return float64(m.CaptureFPSx100.Load()) / 100 }},
		{"visage_analysis_fps", "Analysis rate in frames per second",
			func() float64 { return float64(m.AnalysisFPSx100.Load()) / 100 }},
	}

	for _, g := range gauges {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			g.read,
		))
	}
}

// ObserveAnalyzeLatency records the duration of one analysis cycle.
func (m *Metrics) ObserveAnalyzeLatency(d time.Duration) {
	m.AnalyzeLatencyMs.Store(uint64(d.Milliseconds()))
}

// SetCaptureFPS records the current camera read rate.
func (m *Metrics) SetCaptureFPS(fps float64) {
	m.CaptureFPSx100.Store(uint64(fps * 100))
}

// SetAnalysisFPS records the current analysis rate.
func (m *Metrics) SetAnalysisFPS(fps float64) {
	m.AnalysisFPSx100.Store(uint64(fps * 100))
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
