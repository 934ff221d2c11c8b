package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonBackend writes each batch as an indented JSON array in its own
// timestamped file.
type jsonBackend struct {
	dir string
	now func() time.Time
}

func (b *jsonBackend) Save(results []SessionResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode json: %v", ErrStorage, err)
	}
	path := batchPath(b.dir, "json", b.now())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	return nil
}

func (b *jsonBackend) Close() error { return nil }

func loadJSON(path string) ([]SessionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, path, err)
	}
	var results []SessionResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorage, path, err)
	}
	return results, nil
}
