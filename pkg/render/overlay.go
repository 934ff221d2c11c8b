// Package render owns the display loop: it reads the camera, feeds the
// analysis slot, and draws the indicator overlay onto the preview window.
package render

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/visagekit/visage/pkg/analysis"
	"github.com/visagekit/visage/pkg/health"
	"github.com/visagekit/visage/pkg/storage"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

// IndicatorColor maps a 0-1 indicator value onto a red-yellow-green gradient.
// Values under yellowThresh shade red to yellow, values under greenThresh
// shade yellow to green, and excellent values pick up blue.
func IndicatorColor(value, yellowThresh, greenThresh float64) color.RGBA {
	v := value
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	switch {
	case v < yellowThresh:
		return color.RGBA{R: 255, G: uint8(255 * v / yellowThresh), A: 255}
	case v < greenThresh:
		factor := (v - yellowThresh) / (greenThresh - yellowThresh)
		return color.RGBA{R: uint8(255 * (1 - factor)), G: 255, A: 255}
	default:
		factor := (v - greenThresh) / (1 - greenThresh)
		return color.RGBA{G: 255, B: uint8(255 * factor), A: 255}
	}
}

// indicatorLine is one overlay row: text plus its gradient color.
type indicatorLine struct {
	text  string
	color color.RGBA
}

// indicatorLines builds the per-indicator overlay rows for a result. Absent
// indicators are left off rather than shown as zeros.
func indicatorLines(res storage.SessionResult) []indicatorLine {
	var lines []indicatorLine

	if sym := res.Health.Symmetry; sym.Valid {
		lines = append(lines, indicatorLine{
			text:  fmt.Sprintf("Symmetry: %.2f", sym.Value),
			color: IndicatorColor(sym.Value, 0.7, 0.9),
		})
	}
	if proxy, ok := res.Health.Fatigue.Proxy(); ok {
		// Lower fatigue is better, so the gradient runs on the inverse.
		lines = append(lines, indicatorLine{
			text:  fmt.Sprintf("Eye Fatigue: %s", res.Health.Fatigue),
			color: IndicatorColor(1-proxy, 0.3, 0.7),
		})
	}
	if tex := res.Health.Texture; tex.Valid {
		lines = append(lines, indicatorLine{
			text:  fmt.Sprintf("Skin Texture: %.1f", tex.Value),
			color: white,
		})
	}
	if res.Health.Tone != health.ToneUnknown {
		lines = append(lines, indicatorLine{
			text:  fmt.Sprintf("Skin Tone: %s", res.Health.Tone),
			color: white,
		})
	}
	return lines
}

// statusLines builds the assessment summary rows shown under the stats block.
func statusLines(res storage.SessionResult) []string {
	lines := []string{
		fmt.Sprintf("Health Status: %s", res.Assessment.Status),
	}
	if res.Assessment.Sufficient {
		lines = append(lines, fmt.Sprintf("Health Score: %.1f/10", res.Assessment.Score))
	}
	if len(res.Recommendations) > 0 {
		lines = append(lines, fmt.Sprintf("Recommendation: %s", res.Recommendations[0]))
	}
	return lines
}

// drawResult draws the face box, landmarks, and indicator text for the latest
// result onto the display frame.
func drawResult(mat *gocv.Mat, res storage.SessionResult) {
	box := res.Features.Box
	gocv.Rectangle(mat, box.Rect(), blue, 2)
	for _, pt := range box.Landmarks {
		gocv.Circle(mat, pt, 2, red, -1)
	}

	y := 150
	for _, line := range statusLines(res) {
		gocv.PutText(mat, line, image.Pt(10, y), gocv.FontHersheySimplex, 0.7, white, 2)
		y += 30
	}

	// Indicator rows stack upward from the bottom edge.
	y = mat.Rows() - 20
	for _, line := range indicatorLines(res) {
		gocv.PutText(mat, line.text, image.Pt(10, y), gocv.FontHersheySimplex, 0.5, line.color, 1)
		y -= 20
	}
}

// drawStats draws the performance block in the top-left corner.
func drawStats(mat *gocv.Mat, captureFPS, analysisFPS float64, gpu, faceFound bool) {
	device := "CPU"
	if gpu {
		device = "GPU"
	}
	found := "No"
	if faceFound {
		found = "Yes"
	}

	lines := []string{
		fmt.Sprintf("Display FPS: %.1f", captureFPS),
		fmt.Sprintf("Processing FPS: %.1f", analysisFPS),
		fmt.Sprintf("Using: %s", device),
		fmt.Sprintf("Primary face detected: %s", found),
	}
	y := 30
	for _, line := range lines {
		gocv.PutText(mat, line, image.Pt(10, y), gocv.FontHersheySimplex, 0.7, red, 2)
		y += 30
	}
}

// countdownText returns the banner for the capture session state, or "" when
// nothing should be shown.
func countdownText(state analysis.SessionState, remaining time.Duration, failed bool) string {
	switch state {
	case analysis.SessionArmed:
		return fmt.Sprintf("Capturing in %.1fs - hold still", remaining.Seconds())
	case analysis.SessionCaptured:
		return "Captured - result saved"
	}
	if failed {
		return "Capture failed - no face detected"
	}
	return ""
}
