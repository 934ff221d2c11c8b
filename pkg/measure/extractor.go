package measure

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/visagekit/visage/pkg/capture"
	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
)

const goldenRatio = 1.618

// CVExtractor measures faces with plain OpenCV operations: mirror-difference
// symmetry, grayscale-stddev texture, mean HSV tone, and eye-crop contrast as
// an openness proxy. No learned model beyond the upstream detector.
type CVExtractor struct{}

// NewCVExtractor returns the default extractor.
func NewCVExtractor() *CVExtractor {
	return &CVExtractor{}
}

// Extract measures the region. Measurements that cannot be computed (crop out
// of bounds, missing landmarks) are simply left invalid in the bundle.
func (e *CVExtractor) Extract(f frame.Frame, region detect.Region) (Bundle, error) {
	img, err := capture.ToMat(f)
	if err != nil {
		return Bundle{}, fmt.Errorf("frame to mat: %w", err)
	}
	defer img.Close()

	bundle := Bundle{Box: region}

	// Gross proportions come straight from the box.
	bundle.Proportions.FaceWidth = Some(float64(region.W))
	bundle.Proportions.FaceHeight = Some(float64(region.H))
	if region.H > 0 {
		bundle.Proportions.WidthHeightRatio = Some(float64(region.W) / float64(region.H))
		bundle.Ratios.GoldenRatioDiff = Some(math.Abs(float64(region.H)/float64(region.W) - goldenRatio))
	}

	rect := region.Rect().Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if rect.Dx() < 8 || rect.Dy() < 8 {
		// Degenerate crop: proportions only.
		return bundle, nil
	}

	face := img.Region(rect)
	defer face.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(face, &gray, gocv.ColorBGRToGray)

	bundle.Skin.Texture = grayTexture(gray)
	bundle.Symmetry.Overall = mirrorSymmetry(gray)
	fillTone(face, &bundle.Skin)

	if len(region.Landmarks) >= 2 {
		bundle.Symmetry.EyesLevel = eyesLevel(region)
		bundle.Eyes.Openness = eyeOpenness(gray, rect, region)
	}

	return bundle, nil
}

// grayTexture returns the standard deviation of the grayscale crop. Rough or
// uneven skin raises it; a soft, even crop keeps it low.
func grayTexture(gray gocv.Mat) Metric {
	mean := gocv.NewMat()
	stddev := gocv.NewMat()
	defer mean.Close()
	defer stddev.Close()

	gocv.MeanStdDev(gray, &mean, &stddev)
	return Some(stddev.GetDoubleAt(0, 0))
}

// mirrorSymmetry compares the crop against its horizontal mirror and maps the
// mean absolute difference onto 0-1, where 1 is a perfect mirror.
func mirrorSymmetry(gray gocv.Mat) Metric {
	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(gray, &flipped, 1)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, flipped, &diff)

	meanDiff := diff.Mean().Val1
	sym := 1.0 - meanDiff/127.0
	return Some(clamp01(sym))
}

// fillTone samples the mean HSV of the face crop.
func fillTone(face gocv.Mat, skin *Skin) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(face, &hsv, gocv.ColorBGRToHSV)

	tone := hsv.Mean()
	skin.Hue = Some(tone.Val1)
	skin.Saturation = Some(tone.Val2)
	skin.Value = Some(tone.Val3)
}

// eyesLevel measures how level the two eye landmarks sit, normalized by face
// height: 1 when the eyes are on the same row.
func eyesLevel(region detect.Region) Metric {
	if region.H <= 0 {
		return Metric{}
	}
	dy := math.Abs(float64(region.Landmarks[0].Y - region.Landmarks[1].Y))
	return Some(clamp01(1.0 - dy/(0.1*float64(region.H))*0.5))
}

// eyeOpenness estimates eye openness from local contrast around the two eye
// landmarks. An open eye has strong iris/sclera contrast; a closed lid reads
// nearly flat. This is a proxy, not an aspect-ratio measurement.
func eyeOpenness(gray gocv.Mat, crop image.Rectangle, region detect.Region) Metric {
	half := region.W / 10
	if half < 4 {
		return Metric{}
	}

	var total float64
	var n int
	for _, lm := range region.Landmarks[:2] {
		// Landmarks are frame coordinates; shift into the crop.
		eye := image.Rect(lm.X-half, lm.Y-half, lm.X+half, lm.Y+half).
			Sub(crop.Min).
			Intersect(image.Rect(0, 0, gray.Cols(), gray.Rows()))
		if eye.Dx() < 4 || eye.Dy() < 4 {
			continue
		}

		patch := gray.Region(eye)
		mean := gocv.NewMat()
		stddev := gocv.NewMat()
		gocv.MeanStdDev(patch, &mean, &stddev)
		total += stddev.GetDoubleAt(0, 0)
		n++
		stddev.Close()
		mean.Close()
		patch.Close()
	}

	if n == 0 {
		return Metric{}
	}
	return Some(clamp01(total / float64(n) / 64.0))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
