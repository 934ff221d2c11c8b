// Visage analyzes facial wellness indicators from a webcam in real time.
//
// The preview window is the foreground loop; detection and scoring run on a
// background worker against the freshest frame, and results are persisted in
// batches. Space arms a capture countdown, q quits.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/visagekit/visage/internal/config"
	"github.com/visagekit/visage/internal/log"
	"github.com/visagekit/visage/pkg/analysis"
	"github.com/visagekit/visage/pkg/capture"
	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
	"github.com/visagekit/visage/pkg/measure"
	"github.com/visagekit/visage/pkg/metrics"
	"github.com/visagekit/visage/pkg/render"
	"github.com/visagekit/visage/pkg/storage"
	"github.com/visagekit/visage/pkg/web"
)

// shutdownWait bounds how long background loops get to finish after the
// display loop returns.
const shutdownWait = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Error("visage failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	opts := config.FromEnv()
	flag.IntVar(&opts.Device, "device", opts.Device, "camera device index")
	flag.StringVar(&opts.ModelPath, "model", opts.ModelPath, "path to the YuNet ONNX model")
	flag.BoolVar(&opts.UseGPU, "gpu", opts.UseGPU, "run detection on the CUDA backend")
	flag.StringVar(&opts.OutputDir, "output", opts.OutputDir, "directory for saved results")
	format := flag.String("format", string(opts.Format), "output format: json, csv, xlsx, or sqlite")
	flag.DurationVar(&opts.FlushInterval, "flush-interval", opts.FlushInterval, "time between persistence attempts")
	flag.IntVar(&opts.FrameSkip, "frame-skip", opts.FrameSkip, "refresh the display every Nth frame")
	flag.BoolVar(&opts.Overlay, "overlay", opts.Overlay, "draw the indicator overlay")
	flag.DurationVar(&opts.Countdown, "countdown", opts.Countdown, "capture countdown length")
	flag.StringVar(&opts.DashboardPort, "dashboard", opts.DashboardPort, "dashboard port, empty disables the web server")
	flag.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "debug, info, warn, or error")
	flag.Parse()
	opts.Format = config.Format(*format)

	log.Init(opts.LogLevel)
	if err := opts.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := capture.Open(opts.Device)
	if err != nil {
		return err
	}
	defer source.Close()

	detCfg := detect.DefaultConfig()
	detCfg.ModelPath = opts.ModelPath
	detCfg.UseGPU = opts.UseGPU
	detector, err := detect.NewYuNet(detCfg)
	if err != nil {
		return err
	}
	defer detector.Close()

	backend, err := storage.Open(opts.Format, opts.OutputDir)
	if err != nil {
		return err
	}
	defer backend.Close()

	mets := metrics.New()
	slot := frame.NewSlot()
	queue := storage.NewQueue()
	session := analysis.NewSession(opts.Countdown)
	worker := analysis.NewWorker(slot, detector, measure.NewCVExtractor(), queue, mets, session)
	flusher := storage.NewFlusher(queue, backend, opts.FlushInterval, mets)

	bg, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.Run(bg)
	}()
	go func() {
		defer wg.Done()
		flusher.Run(bg)
	}()

	if opts.DashboardPort != "" {
		srv := web.NewServer(opts.DashboardPort, worker, session, mets)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(bg); err != nil {
				log.Error("dashboard server failed", "error", err)
			}
		}()
	}

	log.Info("visage started",
		"device", opts.Device,
		"format", opts.Format,
		"output", opts.OutputDir,
		"gpu", opts.UseGPU)

	loop := render.NewLoop(source, slot, worker, session, mets, opts)
	runErr := loop.Run(ctx)

	// Display loop is done; give the workers a bounded window to drain.
	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownWait):
		log.Warn("shutdown timed out, exiting anyway")
	}

	log.Info("visage stopped", "results_saved", flusher.Saved())
	return runErr
}
