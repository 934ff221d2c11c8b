package health

import "github.com/visagekit/visage/pkg/measure"

// Analyzer derives wellness indicators from a measurement bundle using fixed
// threshold rules. Thresholds are approximate reference bands, not calibrated
// clinical values.
type Analyzer struct {
	// Symmetry bands on a 0-1 scale.
	symmetryLow    float64
	symmetryNormal float64

	// Openness thresholds below which fatigue is flagged.
	opennessModerate float64
	opennessHigh     float64
}

// NewAnalyzer returns an analyzer with the default reference bands.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		symmetryLow:      0.6,
		symmetryNormal:   0.8,
		opennessModerate: 0.3,
		opennessHigh:     0.2,
	}
}

// Analyze evaluates the bundle. Only measurements present in the bundle yield
// indicators; nothing is defaulted or fabricated for missing measurements.
func (a *Analyzer) Analyze(b measure.Bundle) Indicators {
	var in Indicators

	a.analyzeSymmetry(b, &in)
	a.analyzeEyes(b, &in)
	a.analyzeSkin(b, &in)
	a.analyzeStructure(b, &in)

	return in
}

func (a *Analyzer) analyzeSymmetry(b measure.Bundle, in *Indicators) {
	if sym := b.Symmetry.Overall; sym.Valid {
		in.Symmetry = sym
		switch {
		case sym.Value < a.symmetryLow:
			in.Notes = append(in.Notes, "Significant facial asymmetry detected - consider assessment if recent change")
		case sym.Value < 0.7:
			in.Notes = append(in.Notes, "Facial asymmetry detected - can be normal variation or may indicate muscle imbalance")
		}
	}

	if lvl := b.Symmetry.EyesLevel; lvl.Valid {
		in.EyesLevel = lvl
		if lvl.Value < 0.85 {
			in.Notes = append(in.Notes, "Eye level asymmetry noted - may indicate musculoskeletal alignment factors")
		}
	}
}

func (a *Analyzer) analyzeEyes(b measure.Bundle, in *Indicators) {
	open := b.Eyes.Openness
	if !open.Valid {
		return
	}

	in.Openness = open
	switch {
	case open.Value < a.opennessHigh:
		in.Fatigue = FatigueHigh
		in.Notes = append(in.Notes, "Signs of significant eye fatigue detected - consider rest and screen time reduction")
	case open.Value < a.opennessModerate:
		in.Fatigue = FatigueModerate
		in.Notes = append(in.Notes, "Moderate eye fatigue indicators - consider short breaks")
	default:
		in.Fatigue = FatigueLow
	}
}

func (a *Analyzer) analyzeSkin(b measure.Bundle, in *Indicators) {
	if tex := b.Skin.Texture; tex.Valid {
		in.Texture = tex
		switch {
		case tex.Value > 60:
			in.Notes = append(in.Notes, "Significant skin texture variation detected - consider hydration assessment")
		case tex.Value > 40:
			in.Notes = append(in.Notes, "Moderate skin texture variation - may indicate mild dehydration")
		}
	}

	hue, sat, val := b.Skin.Hue, b.Skin.Saturation, b.Skin.Value
	if !hue.Valid || !sat.Valid || !val.Valid {
		return
	}
	switch {
	case hue.Value >= 20 && hue.Value <= 40 && sat.Value > 100:
		in.Tone = ToneYellowish
	case val.Value < 150 && sat.Value < 50:
		in.Tone = TonePale
	case (hue.Value <= 10 || hue.Value >= 170) && sat.Value > 100:
		in.Tone = ToneReddish
	default:
		in.Tone = ToneNormal
	}
	if note := in.Tone.Note(); note != "" && in.Tone != ToneNormal {
		in.Notes = append(in.Notes, note)
	}
}

func (a *Analyzer) analyzeStructure(b measure.Bundle, in *Indicators) {
	if diff := b.Ratios.GoldenRatioDiff; diff.Valid {
		in.Harmony = measure.Some(clamp01(1 - diff.Value))
	}
}
