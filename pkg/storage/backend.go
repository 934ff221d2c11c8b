package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/visagekit/visage/internal/config"
	"github.com/visagekit/visage/pkg/health"
	"github.com/visagekit/visage/pkg/measure"
)

// ErrStorage wraps persistence failures.
var ErrStorage = errors.New("storage error")

// Backend writes result batches in one output format. Save persists the whole
// batch or fails as a unit so the flusher can retry it.
type Backend interface {
	Save(results []SessionResult) error
	Close() error
}

// Open creates the output directory and returns the backend for the
// configured format. File backends write one timestamped file per batch under
// dir; the SQLite backend keeps a single database there.
func Open(format config.Format, dir string) (Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %v", ErrStorage, err)
	}
	switch format {
	case config.FormatJSON:
		return &jsonBackend{dir: dir, now: time.Now}, nil
	case config.FormatCSV:
		return &csvBackend{dir: dir, now: time.Now}, nil
	case config.FormatXLSX:
		return &excelBackend{dir: dir, now: time.Now}, nil
	case config.FormatSQLite:
		return openSQLite(filepath.Join(dir, "facial_analysis.db"))
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrStorage, format)
	}
}

// LoadFile reads previously saved results from a single output file,
// dispatching on the file extension.
func LoadFile(path string) ([]SessionResult, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return loadJSON(path)
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadExcel(path)
	case ".db", ".sqlite":
		return loadSQLite(path)
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q", ErrStorage, ext)
	}
}

// batchPath names a per-batch output file the same way across file backends.
func batchPath(dir, ext string, now time.Time) string {
	stamp := now.Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("facial_analysis_%s.%s", stamp, ext))
}

// flatHeader is the column order shared by the tabular backends.
var flatHeader = []string{
	"id",
	"timestamp",
	"health_score",
	"health_status",
	"facial_symmetry",
	"eyes_level_symmetry",
	"eye_openness",
	"eye_fatigue",
	"skin_texture",
	"golden_ratio_harmony",
	"skin_tone",
	"face_width",
	"face_height",
	"face_width_height_ratio",
	"top_golden_ratio_diff",
	"recommendations",
}

// flatten produces one tabular row in flatHeader order. Absent metrics become
// empty cells rather than zeros.
func flatten(r SessionResult) []string {
	return []string{
		r.ID,
		r.Timestamp.Format(time.RFC3339),
		strconv.FormatFloat(r.Assessment.Score, 'f', 1, 64),
		string(r.Assessment.Status),
		cell(r.Health.Symmetry),
		cell(r.Health.EyesLevel),
		cell(r.Health.Openness),
		r.Health.Fatigue.String(),
		cell(r.Health.Texture),
		cell(r.Health.Harmony),
		r.Health.Tone.String(),
		cell(r.Features.Proportions.FaceWidth),
		cell(r.Features.Proportions.FaceHeight),
		cell(r.Features.Proportions.WidthHeightRatio),
		cell(r.Features.Ratios.GoldenRatioDiff),
		strings.Join(r.Recommendations, "; "),
	}
}

// unflatten reverses flatten. The measurement bundle is only partially
// recoverable from a tabular row; the columns that were written round-trip,
// the rest stay absent.
func unflatten(row []string) (SessionResult, error) {
	if len(row) != len(flatHeader) {
		return SessionResult{}, fmt.Errorf("%w: row has %d columns, want %d", ErrStorage, len(row), len(flatHeader))
	}

	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return SessionResult{}, fmt.Errorf("%w: bad timestamp %q: %v", ErrStorage, row[1], err)
	}

	var r SessionResult
	r.ID = row[0]
	r.Timestamp = ts
	if row[2] != "" {
		if r.Assessment.Score, err = strconv.ParseFloat(row[2], 64); err != nil {
			return SessionResult{}, fmt.Errorf("%w: bad score %q: %v", ErrStorage, row[2], err)
		}
	}
	r.Assessment.Status = health.Status(row[3])
	r.Assessment.Sufficient = r.Assessment.Status != health.StatusInsufficient
	if r.Health.Symmetry, err = parseCell(row[4]); err != nil {
		return SessionResult{}, err
	}
	if r.Health.EyesLevel, err = parseCell(row[5]); err != nil {
		return SessionResult{}, err
	}
	if r.Health.Openness, err = parseCell(row[6]); err != nil {
		return SessionResult{}, err
	}
	r.Health.Fatigue = health.ParseFatigue(row[7])
	if r.Health.Texture, err = parseCell(row[8]); err != nil {
		return SessionResult{}, err
	}
	if r.Health.Harmony, err = parseCell(row[9]); err != nil {
		return SessionResult{}, err
	}
	r.Health.Tone = health.ParseTone(row[10])
	if r.Features.Proportions.FaceWidth, err = parseCell(row[11]); err != nil {
		return SessionResult{}, err
	}
	if r.Features.Proportions.FaceHeight, err = parseCell(row[12]); err != nil {
		return SessionResult{}, err
	}
	if r.Features.Proportions.WidthHeightRatio, err = parseCell(row[13]); err != nil {
		return SessionResult{}, err
	}
	if r.Features.Ratios.GoldenRatioDiff, err = parseCell(row[14]); err != nil {
		return SessionResult{}, err
	}
	if row[15] != "" {
		r.Recommendations = strings.Split(row[15], "; ")
	}
	return r, nil
}

func cell(m measure.Metric) string {
	if !m.Valid {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

func parseCell(s string) (measure.Metric, error) {
	if s == "" {
		return measure.Metric{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return measure.Metric{}, fmt.Errorf("%w: bad metric cell %q: %v", ErrStorage, s, err)
	}
	return measure.Some(v), nil
}
