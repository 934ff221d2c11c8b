package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// csvBackend writes each batch as a headered CSV file with one flattened row
// per result.
type csvBackend struct {
	dir string
	now func() time.Time
}

func (b *csvBackend) Save(results []SessionResult) error {
	path := batchPath(b.dir, "csv", b.now())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(flatHeader); err != nil {
		return fmt.Errorf("%w: write header: %v", ErrStorage, err)
	}
	for _, r := range results {
		if err := w.Write(flatten(r)); err != nil {
			return fmt.Errorf("%w: write row: %v", ErrStorage, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", ErrStorage, path, err)
	}
	return nil
}

func (b *csvBackend) Close() error { return nil }

func loadCSV(path string) ([]SessionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// First row is the header.
	results := make([]SessionResult, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r, err := unflatten(row)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
