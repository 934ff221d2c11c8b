package health

import (
	"gonum.org/v1/gonum/stat"
)

// WindowCap bounds the per-metric history. Oldest samples are evicted first.
const WindowCap = 30

// Trend classifies the direction of a metric over its history window.
type Trend int

const (
	TrendUnknown Trend = iota
	TrendStable
	TrendIncreasing
	TrendDecreasing
)

// String returns the display label.
func (t Trend) String() string {
	switch t {
	case TrendStable:
		return "Stable"
	case TrendIncreasing:
		return "Increasing"
	case TrendDecreasing:
		return "Decreasing"
	default:
		return "Unknown"
	}
}

// trendMinSamples is the minimum window size before a trend is reported.
const trendMinSamples = 10

// trendBand is the dead band on the mean shift; shifts inside it are Stable.
const trendBand = 0.2

// Window is a bounded FIFO sample buffer for one metric.
type Window struct {
	vals []float64
}

// Append adds a sample, evicting the oldest when the window is full.
func (w *Window) Append(v float64) {
	if len(w.vals) >= WindowCap {
		w.vals = w.vals[1:]
	}
	w.vals = append(w.vals, v)
}

// Len returns the number of retained samples.
func (w *Window) Len() int {
	return len(w.vals)
}

// Values returns a copy of the retained samples, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.vals))
	copy(out, w.vals)
	return out
}

// Trend compares the mean of the five most recent samples against the mean of
// the five oldest retained samples. A cheap two-window comparison, not a
// regression: it is intentionally insensitive to noise inside the dead band.
func (w *Window) Trend() Trend {
	if len(w.vals) < trendMinSamples {
		return TrendUnknown
	}

	earliest := stat.Mean(w.vals[:5], nil)
	recent := stat.Mean(w.vals[len(w.vals)-5:], nil)

	switch shift := recent - earliest; {
	case shift > trendBand:
		return TrendIncreasing
	case shift < -trendBand:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Metric names tracked by History.
const (
	MetricSymmetry  = "facial_symmetry"
	MetricEyesLevel = "eyes_level_symmetry"
	MetricFatigue   = "eye_fatigue"
	MetricTexture   = "skin_texture"
)

// History holds the per-metric windows for one session. Owned exclusively by
// the analysis worker; not safe for concurrent use.
type History struct {
	windows map[string]*Window
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{windows: make(map[string]*Window)}
}

// Observe appends each numeric indicator present in the set onto its window.
// Enum indicators go through their fixed numeric proxy.
func (h *History) Observe(in Indicators) {
	if in.Symmetry.Valid {
		h.window(MetricSymmetry).Append(in.Symmetry.Value)
	}
	if in.EyesLevel.Valid {
		h.window(MetricEyesLevel).Append(in.EyesLevel.Value)
	}
	if p, ok := in.Fatigue.Proxy(); ok {
		h.window(MetricFatigue).Append(p)
	}
	if in.Texture.Valid {
		h.window(MetricTexture).Append(in.Texture.Value)
	}
}

// Trends returns the current classification for every tracked metric that has
// enough history.
func (h *History) Trends() map[string]Trend {
	out := make(map[string]Trend, len(h.windows))
	for name, w := range h.windows {
		if t := w.Trend(); t != TrendUnknown {
			out[name] = t
		}
	}
	return out
}

// Window returns the window for a metric, or nil if never observed.
func (h *History) Window(name string) *Window {
	return h.windows[name]
}

func (h *History) window(name string) *Window {
	w, ok := h.windows[name]
	if !ok {
		w = &Window{}
		h.windows[name] = w
	}
	return w
}
