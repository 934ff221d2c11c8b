// Package measure extracts structured facial measurements from a detected
// region. A bundle may be partially populated: every measurement carries a
// validity flag, and downstream scoring only considers the measurements that
// are actually present.
package measure

import (
	"encoding/json"

	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
)

// Metric is an optional scalar measurement. Invalid metrics marshal as null so
// that persisted records distinguish "absent" from zero.
type Metric struct {
	Value float64
	Valid bool
}

// Some returns a valid metric.
func Some(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// MarshalJSON encodes invalid metrics as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts null for an absent metric.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Some(v)
	return nil
}

// Proportions holds gross face-box measurements in pixels.
type Proportions struct {
	FaceWidth        Metric `json:"face_width"`
	FaceHeight       Metric `json:"face_height"`
	WidthHeightRatio Metric `json:"face_width_height_ratio"`
}

// Symmetry holds left/right balance measurements on a 0-1 scale
// (1 = perfectly symmetric).
type Symmetry struct {
	Overall   Metric `json:"overall_symmetry"`
	EyesLevel Metric `json:"eyes_level"`
}

// Skin holds color-space and texture samples from the face crop.
// Hue/Saturation/Value are the mean HSV of the crop (OpenCV ranges: hue 0-179,
// saturation and value 0-255). Texture is the grayscale standard deviation.
type Skin struct {
	Texture    Metric `json:"texture"`
	Hue        Metric `json:"hue"`
	Saturation Metric `json:"saturation"`
	Value      Metric `json:"value"`
}

// Ratios holds facial proportion measurements against classical references.
type Ratios struct {
	GoldenRatioDiff Metric `json:"top_golden_ratio_diff"`
}

// Eyes holds eye-region measurements.
type Eyes struct {
	Openness Metric `json:"openness"`
}

// Bundle is the full measurement set produced for one primary region.
type Bundle struct {
	Box         detect.Region `json:"-"`
	Proportions Proportions   `json:"metrics"`
	Symmetry    Symmetry      `json:"symmetry"`
	Skin        Skin          `json:"skin"`
	Ratios      Ratios        `json:"facial_ratios"`
	Eyes        Eyes          `json:"eyes"`
}

// Extractor is the interface for feature extraction backends.
type Extractor interface {
	// Extract measures the given region of the frame. A partially empty bundle
	// is a valid result when landmarks or crops are unavailable.
	Extract(f frame.Frame, region detect.Region) (Bundle, error)
}
