package render

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/visagekit/visage/internal/config"
	"github.com/visagekit/visage/internal/log"
	"github.com/visagekit/visage/pkg/analysis"
	"github.com/visagekit/visage/pkg/capture"
	"github.com/visagekit/visage/pkg/frame"
	"github.com/visagekit/visage/pkg/metrics"
)

const windowTitle = "Visage - Real-time Facial Analysis"

// Key codes from WaitKey.
const (
	keyQuit  = 'q'
	keySpace = ' '
)

// Loop is the foreground display loop. It is the sole camera reader: every
// frame read is published to the analysis slot, then drawn with the latest
// available result. Analysis runs behind; the overlay always shows the most
// recent completed cycle.
type Loop struct {
	source  capture.Reader
	slot    *frame.Slot
	worker  *analysis.Worker
	session *analysis.Session
	metrics *metrics.Metrics
	opts    config.Options
	rate    *metrics.RateTracker
}

// NewLoop wires the display loop.
func NewLoop(src capture.Reader, slot *frame.Slot, w *analysis.Worker, s *analysis.Session, m *metrics.Metrics, opts config.Options) *Loop {
	return &Loop{
		source:  src,
		slot:    slot,
		worker:  w,
		session: s,
		metrics: m,
		opts:    opts,
		rate:    metrics.NewRateTracker(),
	}
}

// Run shows the preview window until the user quits, the camera goes away, or
// the context is canceled. The space key arms a capture countdown.
func (l *Loop) Run(ctx context.Context) error {
	window := gocv.NewWindow(windowTitle)
	defer window.Close()
	// Every exit ends the pipeline; an armed countdown must not stay armed.
	defer l.session.Abort()

	var count int
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		f, captureFPS, err := l.ingest()
		if err != nil {
			return err
		}

		count++
		if count%l.opts.FrameSkip != 0 {
			continue
		}

		mat, err := capture.ToMat(f)
		if err != nil {
			log.Warn("frame conversion failed", "error", err)
			continue
		}
		l.draw(&mat, captureFPS)
		window.IMShow(mat)
		mat.Close()

		switch key := window.WaitKey(1); key {
		case keyQuit:
			log.Info("quit requested")
			return nil
		case keySpace:
			if l.session.Trigger() {
				log.Info("capture countdown armed")
			}
		}
	}
}

// ingest reads one frame and publishes it to the analysis slot. A read error
// is terminal for the loop.
func (l *Loop) ingest() (frame.Frame, float64, error) {
	f, err := l.source.Read()
	if err != nil {
		l.metrics.CaptureErrors.Add(1)
		return frame.Frame{}, 0, fmt.Errorf("camera read: %w", err)
	}
	l.metrics.FramesCaptured.Add(1)
	captureFPS := l.rate.Tick()
	l.metrics.SetCaptureFPS(captureFPS)
	l.slot.Publish(f)
	return f, captureFPS, nil
}

func (l *Loop) draw(mat *gocv.Mat, captureFPS float64) {
	res, ok := l.worker.Latest()

	analysisFPS := float64(l.metrics.AnalysisFPSx100.Load()) / 100
	drawStats(mat, captureFPS, analysisFPS, l.opts.UseGPU, ok)

	if ok && l.opts.Overlay {
		drawResult(mat, res)
	}

	state, remaining := l.session.State()
	if banner := countdownText(state, remaining, l.session.Failed()); banner != "" {
		pt := image.Pt(10, mat.Rows()/2)
		gocv.PutText(mat, banner, pt, gocv.FontHersheySimplex, 0.9, red, 2)
	}
}
