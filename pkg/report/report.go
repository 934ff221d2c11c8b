// Package report renders saved analysis results into an HTML page of
// per-metric charts and a markdown summary.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/visagekit/visage/pkg/measure"
	"github.com/visagekit/visage/pkg/storage"
)

// series is one charted metric: a label plus an accessor into a result.
type series struct {
	title string
	yAxis string
	value func(storage.SessionResult) (float64, bool)
}

var chartSeries = []series{
	{"Health Score", "score (0-10)", func(r storage.SessionResult) (float64, bool) {
		return r.Assessment.Score, r.Assessment.Sufficient
	}},
	{"Facial Symmetry", "symmetry (0-1)", func(r storage.SessionResult) (float64, bool) {
		return metric(r.Health.Symmetry)
	}},
	{"Eyes Level Symmetry", "symmetry (0-1)", func(r storage.SessionResult) (float64, bool) {
		return metric(r.Health.EyesLevel)
	}},
	{"Eye Fatigue", "fatigue proxy (0-1)", func(r storage.SessionResult) (float64, bool) {
		return r.Health.Fatigue.Proxy()
	}},
	{"Skin Texture", "std dev", func(r storage.SessionResult) (float64, bool) {
		return metric(r.Health.Texture)
	}},
}

func metric(m measure.Metric) (float64, bool) {
	return m.Value, m.Valid
}

// Charts renders all metric charts into one HTML page at path. Results should
// be in chronological order; charts skip results where the metric is absent.
func Charts(results []storage.SessionResult, path string) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to chart")
	}

	page := components.NewPage()
	page.PageTitle = "Facial Analysis Report"

	for _, s := range chartSeries {
		if chart := lineChart(results, s); chart != nil {
			page.AddCharts(chart)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// lineChart builds one metric chart, or nil when no result carries the
// metric.
func lineChart(results []storage.SessionResult, s series) *charts.Line {
	var labels []string
	var points []opts.LineData
	for _, r := range results {
		v, ok := s.value(r)
		if !ok {
			continue
		}
		labels = append(labels, r.Timestamp.Format(time.TimeOnly))
		points = append(points, opts.LineData{Value: v})
	}
	if len(points) == 0 {
		return nil
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    s.title,
			Subtitle: fmt.Sprintf("%d samples", len(points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.yAxis}),
	)
	line.SetXAxis(labels).AddSeries(s.title, points,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}
