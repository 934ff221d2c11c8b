// Package config provides configuration for the visage pipeline.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Format selects the persistence encoding for saved session results.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// Options holds all tunable parameters for the pipeline.
type Options struct {
	// Capture
	Device    int    // camera device index
	ModelPath string // path to YuNet ONNX model
	UseGPU    bool   // request CUDA backend for detection

	// Persistence
	OutputDir     string
	Format        Format
	FlushInterval time.Duration // time between persistence attempts

	// Render loop
	FrameSkip int  // overlay refresh every Nth display frame
	Overlay   bool // draw indicator overlay on the video window

	// Session capture
	Countdown time.Duration // armed countdown before single-shot capture

	// Dashboard; empty port disables the web server
	DashboardPort string

	// Logging
	LogLevel string
}

// Default returns the recommended configuration.
func Default() Options {
	return Options{
		Device:        0,
		ModelPath:     "models/face_detection_yunet.onnx",
		UseGPU:        false,
		OutputDir:     "output",
		Format:        FormatJSON,
		FlushInterval: 10 * time.Second,
		FrameSkip:     1,
		Overlay:       true,
		Countdown:     3 * time.Second,
		DashboardPort: "",
		LogLevel:      "info",
	}
}

// FromEnv returns Default overridden by VISAGE_* environment variables.
func FromEnv() Options {
	o := Default()
	if v := os.Getenv("VISAGE_DEVICE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.Device = n
		}
	}
	if v := os.Getenv("VISAGE_MODEL"); v != "" {
		o.ModelPath = v
	}
	if v := os.Getenv("VISAGE_GPU"); v != "" {
		o.UseGPU = v == "1" || v == "true"
	}
	if v := os.Getenv("VISAGE_OUTPUT"); v != "" {
		o.OutputDir = v
	}
	if v := os.Getenv("VISAGE_FORMAT"); v != "" {
		o.Format = Format(v)
	}
	if v := os.Getenv("VISAGE_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			o.FlushInterval = d
		}
	}
	if v := os.Getenv("VISAGE_FRAME_SKIP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			o.FrameSkip = n
		}
	}
	if v := os.Getenv("VISAGE_OVERLAY"); v != "" {
		o.Overlay = v != "0" && v != "false"
	}
	if v := os.Getenv("VISAGE_DASHBOARD_PORT"); v != "" {
		o.DashboardPort = v
	}
	if v := os.Getenv("VISAGE_LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}
	return o
}

// Validate reports the first invalid option, or nil.
func (o Options) Validate() error {
	switch o.Format {
	case FormatJSON, FormatCSV, FormatXLSX, FormatSQLite:
	default:
		return fmt.Errorf("unknown output format %q", o.Format)
	}
	if o.FlushInterval <= 0 {
		return fmt.Errorf("flush interval must be positive, got %v", o.FlushInterval)
	}
	if o.FrameSkip < 1 {
		return fmt.Errorf("frame skip factor must be >= 1, got %d", o.FrameSkip)
	}
	if o.Countdown <= 0 {
		return fmt.Errorf("countdown must be positive, got %v", o.Countdown)
	}
	return nil
}
