// Package health turns facial measurements into wellness indicators, an
// aggregate score, and recommendations, and tracks per-metric trends.
//
// Nothing here is diagnostic. The indicators are screen-wellness heuristics
// over geometry and color statistics.
package health

import (
	"encoding/json"
	"math"

	"github.com/visagekit/visage/pkg/measure"
)

// FatigueLevel classifies eye fatigue from the openness proxy.
type FatigueLevel int

const (
	FatigueUnknown FatigueLevel = iota
	FatigueLow
	FatigueModerate
	FatigueHigh
)

// String returns the display label.
func (l FatigueLevel) String() string {
	switch l {
	case FatigueLow:
		return "Low"
	case FatigueModerate:
		return "Moderate"
	case FatigueHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Proxy maps the level onto a fixed numeric scale used for history tracking
// and scoring. ok is false for FatigueUnknown.
func (l FatigueLevel) Proxy() (float64, bool) {
	switch l {
	case FatigueLow:
		return 0.1, true
	case FatigueModerate:
		return 0.6, true
	case FatigueHigh:
		return 0.9, true
	default:
		return 0, false
	}
}

// ParseFatigue is the inverse of String. Unrecognized labels map to
// FatigueUnknown.
func ParseFatigue(s string) FatigueLevel {
	switch s {
	case "Low":
		return FatigueLow
	case "Moderate":
		return FatigueModerate
	case "High":
		return FatigueHigh
	default:
		return FatigueUnknown
	}
}

// MarshalJSON encodes the level as its display label so persisted records
// stay readable.
func (l FatigueLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a display label.
func (l *FatigueLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseFatigue(s)
	return nil
}

// ToneClass classifies the sampled skin tone.
type ToneClass int

const (
	ToneUnknown ToneClass = iota
	ToneNormal
	ToneYellowish
	TonePale
	ToneReddish
)

// String returns the display label.
func (t ToneClass) String() string {
	switch t {
	case ToneNormal:
		return "Normal"
	case ToneYellowish:
		return "Yellowish"
	case TonePale:
		return "Pale"
	case ToneReddish:
		return "Reddish"
	default:
		return "Unknown"
	}
}

// ParseTone is the inverse of String. Unrecognized labels map to ToneUnknown.
func ParseTone(s string) ToneClass {
	switch s {
	case "Normal":
		return ToneNormal
	case "Yellowish":
		return ToneYellowish
	case "Pale":
		return TonePale
	case "Reddish":
		return ToneReddish
	default:
		return ToneUnknown
	}
}

// MarshalJSON encodes the class as its display label.
func (t ToneClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a display label.
func (t *ToneClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTone(s)
	return nil
}

// Note returns the advisory text for the tone class.
func (t ToneClass) Note() string {
	switch t {
	case ToneYellowish:
		return "Yellowish tint detected - may indicate bilirubin variations"
	case TonePale:
		return "Pale complexion detected - may relate to circulation or blood metrics"
	case ToneReddish:
		return "Increased skin redness detected - may indicate inflammatory response"
	case ToneNormal:
		return "Normal skin tone variation detected"
	default:
		return ""
	}
}

// Indicators is the fixed indicator record produced per analysis cycle.
// Numeric indicators use measure.Metric so an absent value is representable
// without sentinels; enum indicators use their Unknown zero value when absent.
type Indicators struct {
	Symmetry  measure.Metric `json:"facial_symmetry"`
	EyesLevel measure.Metric `json:"eyes_level_symmetry"`
	Openness  measure.Metric `json:"eye_openness"`
	Fatigue   FatigueLevel   `json:"eye_fatigue"`
	Texture   measure.Metric `json:"skin_texture"`
	Harmony   measure.Metric `json:"golden_ratio_harmony"`
	Tone      ToneClass      `json:"skin_tone"`
	Notes     []string       `json:"notes,omitempty"`
}

// Status is the overall assessment band.
type Status string

const (
	StatusExcellent    Status = "Excellent"
	StatusGood         Status = "Good"
	StatusFair         Status = "Fair"
	StatusConcerning   Status = "Concerning"
	StatusPoor         Status = "Poor"
	StatusInsufficient Status = "Insufficient Data"
)

// StatusFor maps an aggregate score (0-10) onto the five ordered bands.
func StatusFor(score float64) Status {
	switch {
	case score >= 8.5:
		return StatusExcellent
	case score >= 7.0:
		return StatusGood
	case score >= 5.5:
		return StatusFair
	case score >= 4.0:
		return StatusConcerning
	default:
		return StatusPoor
	}
}

// Assessment is the aggregate over one indicator set.
type Assessment struct {
	Score      float64 `json:"score"`
	Status     Status  `json:"status"`
	Sufficient bool    `json:"sufficient"`
}

// component is one row of the fixed weight table. Weights are ordered:
// symmetry carries the most, then eye-level symmetry, fatigue, texture,
// harmony. Subscores are on a 0-10 scale.
type component struct {
	weight   float64
	subscore func(Indicators) (float64, bool)
}

var components = []component{
	{2.5, func(in Indicators) (float64, bool) {
		return in.Symmetry.Value * 10, in.Symmetry.Valid
	}},
	{1.5, func(in Indicators) (float64, bool) {
		return in.EyesLevel.Value * 10, in.EyesLevel.Valid
	}},
	{1.25, func(in Indicators) (float64, bool) {
		p, ok := in.Fatigue.Proxy()
		return (1 - p) * 10, ok
	}},
	{1.0, func(in Indicators) (float64, bool) {
		return clamp01(1-in.Texture.Value/100) * 10, in.Texture.Valid
	}},
	{0.75, func(in Indicators) (float64, bool) {
		return in.Harmony.Value * 10, in.Harmony.Valid
	}},
}

// Aggregate computes the weighted mean over only the indicators present.
// Absent indicators contribute zero weight, never a zero value. With nothing
// present the assessment is explicitly insufficient; no value is fabricated.
func Aggregate(in Indicators) Assessment {
	var sum, weights float64
	for _, c := range components {
		if v, ok := c.subscore(in); ok {
			sum += v * c.weight
			weights += c.weight
		}
	}

	if weights == 0 {
		return Assessment{Status: StatusInsufficient}
	}

	score := round1(sum / weights)
	return Assessment{
		Score:      score,
		Status:     StatusFor(score),
		Sufficient: true,
	}
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

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
