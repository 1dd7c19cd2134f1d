package event

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// WriteCSV writes records with the Header row followed by ColKey.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, Header...), ColKey)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(append(r.Row(), r.Key)); err != nil {
			return fmt.Errorf("failed to write record %q: %w", r.Subject, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads records written by WriteCSV. Columns are located by header
// name, so reordered files are accepted. ColKey may be absent, in which case
// records have no Key.
func ReadCSV(r io.Reader, loc *time.Location) ([]Record, error) {
	cr := csv.NewReader(r)
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	positions := make([]int, len(Header))
	for i, name := range Header {
		positions[i] = columnIndex(lines[0], name)
		if positions[i] < 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	keyPos := columnIndex(lines[0], ColKey)

	records := make([]Record, 0, len(lines)-1)
	for n, line := range lines[1:] {
		row := make([]string, len(Header))
		for i, p := range positions {
			if p < len(line) {
				row[i] = line[p]
			}
		}
		rec, err := ParseRow(row, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		if keyPos >= 0 && keyPos < len(line) {
			rec.Key = strings.TrimSpace(line[keyPos])
		}
		records = append(records, rec)
	}
	return records, nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
