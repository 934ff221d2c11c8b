package health

import (
	"testing"

	"github.com/visagekit/visage/pkg/measure"
)

func TestAnalyze_EmptyBundle(t *testing.T) {
	in := NewAnalyzer().Analyze(measure.Bundle{})

	if in.Symmetry.Valid || in.EyesLevel.Valid || in.Texture.Valid || in.Harmony.Valid {
		t.Error("no measurement present, no indicator should be valid")
	}
	if in.Fatigue != FatigueUnknown {
		t.Errorf("got fatigue %v, want unknown", in.Fatigue)
	}
	if in.Tone != ToneUnknown {
		t.Errorf("got tone %v, want unknown", in.Tone)
	}
}

func TestAnalyze_FatigueFromOpenness(t *testing.T) {
	tests := []struct {
		openness float64
		want     FatigueLevel
	}{
		{0.1, FatigueHigh},
		{0.25, FatigueModerate},
		{0.45, FatigueLow},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		b := measure.Bundle{}
		b.Eyes.Openness = measure.Some(tt.openness)
		if got := a.Analyze(b).Fatigue; got != tt.want {
			t.Errorf("openness %v: got %v, want %v", tt.openness, got, tt.want)
		}
	}
}

func TestAnalyze_ToneClassification(t *testing.T) {
	tests := []struct {
		name          string
		hue, sat, val float64
		want          ToneClass
	}{
		{"yellowish", 30, 120, 180, ToneYellowish},
		{"pale", 90, 30, 120, TonePale},
		{"reddish", 5, 130, 180, ToneReddish},
		{"normal", 15, 80, 180, ToneNormal},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := measure.Bundle{}
			b.Skin.Hue = measure.Some(tt.hue)
			b.Skin.Saturation = measure.Some(tt.sat)
			b.Skin.Value = measure.Some(tt.val)
			if got := a.Analyze(b).Tone; got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyze_HarmonyClampedFromRatioDiff(t *testing.T) {
	a := NewAnalyzer()

	b := measure.Bundle{}
	b.Ratios.GoldenRatioDiff = measure.Some(0.3)
	got := a.Analyze(b).Harmony
	if !got.Valid || got.Value != 0.7 {
		t.Errorf("got %+v, want valid 0.7", got)
	}

	b.Ratios.GoldenRatioDiff = measure.Some(1.4)
	got = a.Analyze(b).Harmony
	if !got.Valid || got.Value != 0 {
		t.Errorf("large deviation should clamp to 0, got %+v", got)
	}
}

func TestRecommend_RuleOrderAndDefault(t *testing.T) {
	in := Indicators{
		Symmetry: measure.Some(0.6),
		Fatigue:  FatigueHigh,
		Texture:  measure.Some(45),
	}

	recs := Recommend(in, Assessment{Score: 5.0, Sufficient: true})
	want := []string{
		"Take a break from screen time",
		"Apply the 20-20-20 rule (look 20ft away for 20s every 20min)",
		"Check for sleeping position issues",
		"Consider facial exercises to improve muscle tone",
		"Consider hydration and skincare routine",
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d recommendations, want %d: %v", len(recs), len(want), recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("recommendation %d: got %q, want %q", i, recs[i], want[i])
		}
	}
}

func TestRecommend_DefaultWhenNoRuleFires(t *testing.T) {
	healthy := Indicators{
		Symmetry: measure.Some(0.95),
		Fatigue:  FatigueLow,
		Texture:  measure.Some(15),
	}

	recs := Recommend(healthy, Assessment{Score: 8.8, Sufficient: true})
	if len(recs) != 1 || recs[0] != "Maintain healthy habits and adequate rest" {
		t.Errorf("got %v, want single maintenance recommendation", recs)
	}

	recs = Recommend(Indicators{}, Assessment{Score: 4.5, Sufficient: true})
	if len(recs) != 1 || recs[0] != "Consider consulting a healthcare professional" {
		t.Errorf("got %v, want single low-score recommendation", recs)
	}
}
