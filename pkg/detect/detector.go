// Package detect provides face detection for the analysis pipeline.
package detect

import (
	"image"

	"github.com/visagekit/visage/pkg/frame"
)

// Region is a detected face: an axis-aligned pixel-space bounding box with a
// confidence in [0,1]. Landmarks holds the detector's five facial keypoints
// (eyes, nose tip, mouth corners) when the backend provides them; it may be nil.
type Region struct {
	X, Y       int
	W, H       int
	Confidence float64
	Landmarks  []image.Point
}

// Area returns the bounding box area in pixels.
func (r Region) Area() int {
	return r.W * r.H
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Detector is the interface for face detection backends.
type Detector interface {
	// Detect finds faces in the frame. Zero regions is a valid result, not an error.
	Detect(f frame.Frame) ([]Region, error)

	// Close releases resources.
	Close() error
}

// Primary selects the region to analyze: the one with maximum area. Ties keep
// the first-seen region so selection stays deterministic.
func Primary(regions []Region) (Region, bool) {
	if len(regions) == 0 {
		return Region{}, false
	}

	best := 0
	for i := 1; i < len(regions); i++ {
		if regions[i].Area() > regions[best].Area() {
			best = i
		}
	}
	return regions[best], true
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // path to YuNet ONNX model
	ConfidenceThresh float64 // minimum confidence (default 0.5)
	InputWidth       int     // model input width
	InputHeight      int     // model input height
	UseGPU           bool    // run inference on the CUDA backend
}

// DefaultConfig returns production defaults for YuNet.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}
