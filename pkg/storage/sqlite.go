package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS analysis_results (
		id TEXT PRIMARY KEY,
		captured_at TIMESTAMP NOT NULL,
		frame_seq INTEGER NOT NULL,
		score REAL NOT NULL,
		status TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_captured_at
		ON analysis_results (captured_at);
`

// sqliteBackend stores all batches in one database file. Queryable columns
// cover the aggregate; the payload column holds the full record as JSON.
type sqliteBackend struct {
	db *sql.DB
}

func openSQLite(path string) (*sqliteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrStorage, err)
	}
	return &sqliteBackend{db: db}, nil
}

// Save inserts the batch in a single transaction.
func (b *sqliteBackend) Save(results []SessionResult) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO analysis_results (id, captured_at, frame_seq, score, status, payload)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", ErrStorage, err)
	}
	defer stmt.Close()

	for _, r := range results {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", ErrStorage, r.ID, err)
		}
		ts := r.Timestamp.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.Exec(r.ID, ts, r.FrameSeq, r.Assessment.Score, string(r.Assessment.Status), string(payload)); err != nil {
			return fmt.Errorf("%w: insert %s: %v", ErrStorage, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return nil
}

func (b *sqliteBackend) Close() error { return b.db.Close() }

func loadSQLite(path string) ([]SessionResult, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT payload FROM analysis_results ORDER BY captured_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrStorage, path, err)
	}
	defer rows.Close()

	var results []SessionResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStorage, err)
		}
		var r SessionResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("%w: decode payload: %v", ErrStorage, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %v", ErrStorage, err)
	}
	return results, nil
}
