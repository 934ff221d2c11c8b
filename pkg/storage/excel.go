package storage

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const excelSheet = "Analysis"

// excelBackend writes each batch as a single-sheet XLSX workbook with the
// same flattened rows as the CSV backend.
type excelBackend struct {
	dir string
	now func() time.Time
}

func (b *excelBackend) Save(results []SessionResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", excelSheet); err != nil {
		return fmt.Errorf("%w: name sheet: %v", ErrStorage, err)
	}
	if err := writeRow(f, 1, flatHeader); err != nil {
		return err
	}
	for i, r := range results {
		if err := writeRow(f, i+2, flatten(r)); err != nil {
			return err
		}
	}

	path := batchPath(b.dir, "xlsx", b.now())
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	return nil
}

func (b *excelBackend) Close() error { return nil }

func writeRow(f *excelize.File, row int, cells []string) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("%w: cell address: %v", ErrStorage, err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(excelSheet, addr, &values); err != nil {
		return fmt.Errorf("%w: write row %d: %v", ErrStorage, row, err)
	}
	return nil
}

func loadExcel(path string) ([]SessionResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	results := make([]SessionResult, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells; pad back to full width.
		for len(row) < len(flatHeader) {
			row = append(row, "")
		}
		r, err := unflatten(row)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
