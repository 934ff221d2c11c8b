package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/visagekit/visage/pkg/capture"
	"github.com/visagekit/visage/pkg/frame"
)

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection.
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // protects inference
}

// NewYuNet creates a face detector backed by GoCV's built-in FaceDetectorYN.
// With cfg.UseGPU set, inference runs on the CUDA backend; otherwise CPU.
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	backend := gocv.NetBackendDefault
	target := gocv.NetTargetCPU
	if cfg.UseGPU {
		backend = gocv.NetBackendCUDA
		target = gocv.NetTargetCUDA
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // no config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // top K
		int(backend),
		int(target),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// Detect finds faces in the frame and returns pixel-space regions with the
// five YuNet landmarks attached.
func (d *YuNetDetector) Detect(f frame.Frame) ([]Region, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := capture.ToMat(f)
	if err != nil {
		return nil, fmt.Errorf("frame to mat: %w", err)
	}
	defer img.Close()

	// Input size must match the image or boxes come back scaled wrong.
	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	// YuNet output format (15 columns):
	// 0-3: x, y, w, h (bounding box in pixels)
	// 4-13: 5 facial landmarks (x,y pairs)
	// 14: face score
	var regions []Region
	for r := 0; r < faces.Rows(); r++ {
		lm := make([]image.Point, 0, 5)
		for p := 0; p < 5; p++ {
			lm = append(lm, image.Pt(
				int(faces.GetFloatAt(r, 4+2*p)),
				int(faces.GetFloatAt(r, 5+2*p)),
			))
		}

		score := float64(faces.GetFloatAt(r, 14))
		if score > 1 {
			score = 1
		}

		regions = append(regions, Region{
			X:          int(faces.GetFloatAt(r, 0)),
			Y:          int(faces.GetFloatAt(r, 1)),
			W:          int(faces.GetFloatAt(r, 2)),
			H:          int(faces.GetFloatAt(r, 3)),
			Confidence: score,
			Landmarks:  lm,
		})
	}

	return regions, nil
}

// Close releases the detector resources.
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
