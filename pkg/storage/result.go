// Package storage persists completed analysis sessions. Results flow through
// an unbounded queue into a background flusher that periodically writes
// batches with a format backend (JSON, CSV, XLSX, or SQLite).
package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/visagekit/visage/pkg/health"
	"github.com/visagekit/visage/pkg/measure"
)

// SessionResult is one persisted analysis session: the measurements, the
// derived indicators, the aggregate assessment, and the recommendations.
type SessionResult struct {
	ID              string            `json:"id"`
	Timestamp       time.Time         `json:"timestamp"`
	FrameSeq        uint64            `json:"frame_seq"`
	Features        measure.Bundle    `json:"features"`
	Health          health.Indicators `json:"health_analysis"`
	Assessment      health.Assessment `json:"assessment"`
	Recommendations []string          `json:"recommendations"`
}

// NewSessionResult assembles a result with a fresh id and the current time.
func NewSessionResult(seq uint64, b measure.Bundle, in health.Indicators, a health.Assessment, recs []string) SessionResult {
	return SessionResult{
		ID:              uuid.NewString(),
		Timestamp:       time.Now(),
		FrameSeq:        seq,
		Features:        b,
		Health:          in,
		Assessment:      a,
		Recommendations: recs,
	}
}
