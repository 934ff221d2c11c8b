package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/visagekit/visage/pkg/storage"
)

// Summary writes a human-readable markdown report for the results.
func Summary(results []storage.SessionResult, path string) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	var b strings.Builder
	b.WriteString("# Facial Analysis Health Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Sessions analyzed: %d\n\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&b, "## Session %d\n\n", i+1)
		fmt.Fprintf(&b, "Analysis time: %s\n\n", r.Timestamp.Format("2006-01-02 15:04:05"))

		if r.Assessment.Sufficient {
			fmt.Fprintf(&b, "**Health Status: %s**\n\n", r.Assessment.Status)
			fmt.Fprintf(&b, "**Overall Health Score: %.1f/10** `%s`\n\n",
				r.Assessment.Score, scoreBar(r.Assessment.Score))
		} else {
			b.WriteString("**Health analysis performed with limited data available**\n\n")
		}

		b.WriteString("### Indicators\n\n")
		writeIndicators(&b, r)

		if len(r.Health.Notes) > 0 {
			b.WriteString("### Observations\n\n")
			for _, note := range r.Health.Notes {
				fmt.Fprintf(&b, "- %s\n", note)
			}
			b.WriteString("\n")
		}

		b.WriteString("### Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	b.WriteString("*This analysis is for informational purposes only and is not medical advice.*\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func writeIndicators(b *strings.Builder, r storage.SessionResult) {
	if sym := r.Health.Symmetry; sym.Valid {
		fmt.Fprintf(b, "- **Facial Symmetry**: %.2f%s\n", sym.Value, symmetryGrade(sym.Value))
	}
	if lvl := r.Health.EyesLevel; lvl.Valid {
		fmt.Fprintf(b, "- **Eyes Level Symmetry**: %.2f\n", lvl.Value)
	}
	if _, ok := r.Health.Fatigue.Proxy(); ok {
		fmt.Fprintf(b, "- **Eye Fatigue**: %s\n", r.Health.Fatigue)
	}
	if tex := r.Health.Texture; tex.Valid {
		fmt.Fprintf(b, "- **Skin Texture**: %.2f%s\n", tex.Value, textureGrade(tex.Value))
	}
	if note := r.Health.Tone.Note(); note != "" {
		fmt.Fprintf(b, "- **Skin Tone**: %s\n", note)
	}
	b.WriteString("\n")
}

// scoreBar renders a ten-slot block bar for a 0-10 score.
func scoreBar(score float64) string {
	filled := int(score)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func symmetryGrade(v float64) string {
	switch {
	case v > 0.9:
		return " (Excellent)"
	case v > 0.8:
		return " (Good)"
	case v > 0.7:
		return " (Fair)"
	default:
		return " (Needs attention)"
	}
}

func textureGrade(v float64) string {
	switch {
	case v < 20:
		return " (Healthy)"
	case v < 35:
		return " (Normal)"
	case v < 45:
		return " (Elevated)"
	default:
		return " (High)"
	}
}
