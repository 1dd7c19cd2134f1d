package sheet

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ReadXLSXFile reads the first worksheet of a workbook on disk.
func ReadXLSXFile(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readWorkbook(filepath.Base(path), f)
}

// readWorkbook reads raw cell values so dates arrive as serial numbers.
func readWorkbook(name string, f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return NewTable(name, nil), nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	records := make([][]Value, len(rows))
	for i, row := range rows {
		rec := make([]Value, len(row))
		for j, cell := range row {
			if i == 0 {
				rec[j] = String(cell)
			} else {
				rec[j] = inferValue(cell)
			}
		}
		records[i] = rec
	}
	return tableFromRecords(name, records), nil
}
