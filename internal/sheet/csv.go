package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSVFile reads a CSV file on disk.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(filepath.Base(path), f)
}

// ReadCSV reads a CSV table. UTF-8 input (with or without BOM) is read as is;
// anything else is decoded as Shift_JIS.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		raw, err = japanese.ShiftJIS.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode csv as Shift_JIS: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	records := make([][]Value, len(lines))
	for i, line := range lines {
		rec := make([]Value, len(line))
		for j, cell := range line {
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
