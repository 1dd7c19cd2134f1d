package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/teemow/calimport/internal/logging"
)

// Source is something a Table can be loaded from.
type Source interface {
	// Name identifies the source in logs and warnings.
	Name() string
	Load(ctx context.Context) (*Table, error)
}

// FileSource is a spreadsheet or CSV file on disk.
type FileSource struct {
	Path string
}

// Name returns the base name of the file.
func (s FileSource) Name() string {
	return filepath.Base(s.Path)
}

// Load reads the file according to its extension.
func (s FileSource) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

// LoadFile reads an .xlsx/.xlsm workbook or a .csv file.
func LoadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSXFile(path)
	case ".csv":
		return ReadCSVFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadAll loads every source. A failing source is reported as a
// *SourceError and never prevents the others from loading.
func LoadAll(ctx context.Context, sources []Source, logger *slog.Logger) ([]*Table, []*SourceError) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "sheet.load")

	var (
		tables   []*Table
		failures []*SourceError
	)
	for _, src := range sources {
		if ctx.Err() != nil {
			failures = append(failures, &SourceError{Source: src.Name(), Err: ctx.Err()})
			continue
		}
		t, err := src.Load(ctx)
		if err != nil {
			logger.Warn("failed to read source", logging.Source(src.Name()), logging.Err(err))
			failures = append(failures, &SourceError{Source: src.Name(), Err: err})
			continue
		}
		logger.Debug("loaded source",
			logging.Source(src.Name()),
			slog.Int("rows", t.Len()),
			slog.Int("columns", len(t.Columns)))
		tables = append(tables, t)
	}
	return tables, failures
}

// tableFromRecords builds a table whose first record is the header.
// Records that are entirely blank are skipped.
func tableFromRecords(name string, records [][]Value) *Table {
	if len(records) == 0 {
		return NewTable(name, nil)
	}
	header := make([]string, len(records[0]))
	for i, v := range records[0] {
		header[i] = v.String()
	}
	t := NewTable(name, header)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.AppendRow(rec)
	}
	return t
}

func blank(rec []Value) bool {
	for _, v := range rec {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}
