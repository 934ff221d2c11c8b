package health

// recommendation rules are evaluated in a fixed order; each rule is
// independent and more than one may fire. The output order is the evaluation
// order.
type rule struct {
	applies func(Indicators) bool
	advice  []string
}

var rules = []rule{
	{
		applies: func(in Indicators) bool {
			return in.Fatigue == FatigueModerate || in.Fatigue == FatigueHigh
		},
		advice: []string{
			"Take a break from screen time",
			"Apply the 20-20-20 rule (look 20ft away for 20s every 20min)",
		},
	},
	{
		applies: func(in Indicators) bool {
			return in.Symmetry.Valid && in.Symmetry.Value < 0.7
		},
		advice: []string{
			"Check for sleeping position issues",
			"Consider facial exercises to improve muscle tone",
		},
	},
	{
		applies: func(in Indicators) bool {
			return in.Texture.Valid && in.Texture.Value > 30
		},
		advice: []string{
			"Consider hydration and skincare routine",
		},
	},
	{
		applies: func(in Indicators) bool {
			return in.Tone == ToneYellowish
		},
		advice: []string{
			"Consider checking liver health and hydration",
		},
	},
}

// Recommend evaluates the threshold rules against the indicator set. If no
// rule fires, one default maintenance recommendation is returned based on the
// aggregate score, so the list is never empty.
func Recommend(in Indicators, assessment Assessment) []string {
	var recs []string
	for _, r := range rules {
		if r.applies(in) {
			recs = append(recs, r.advice...)
		}
	}

	if len(recs) == 0 {
		if assessment.Sufficient && assessment.Score < 6 {
			recs = append(recs, "Consider consulting a healthcare professional")
		} else {
			recs = append(recs, "Maintain healthy habits and adequate rest")
		}
	}
	return recs
}
