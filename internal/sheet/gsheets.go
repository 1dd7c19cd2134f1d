package sheet

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetRange covers the first worksheet.
const DefaultSheetRange = "A:ZZ"

// SheetsLoader reads tables from Google Sheets.
type SheetsLoader struct {
	svc *sheets.Service
}

// NewSheetsLoader creates a loader. Callers normally pass
// option.WithHTTPClient with an authorized client.
func NewSheetsLoader(ctx context.Context, opts ...option.ClientOption) (*SheetsLoader, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsLoader{svc: svc}, nil
}

// Load reads rng of the spreadsheet. Values are unformatted and dates are
// serial numbers, matching what a workbook file yields.
func (l *SheetsLoader) Load(ctx context.Context, spreadsheetID, rng string) (*Table, error) {
	if rng == "" {
		rng = DefaultSheetRange
	}
	resp, err := l.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get values: %w", err)
	}

	records := make([][]Value, len(resp.Values))
	for i, row := range resp.Values {
		rec := make([]Value, len(row))
		for j, cell := range row {
			if i == 0 {
				rec[j] = String(fmt.Sprint(cell))
			} else {
				rec[j] = sheetValue(cell)
			}
		}
		records[i] = rec
	}
	return tableFromRecords(spreadsheetID+"!"+rng, records), nil
}

func sheetValue(cell interface{}) Value {
	switch v := cell.(type) {
	case nil:
		return Empty
	case float64:
		return Number(v)
	case bool:
		return Bool(v)
	case string:
		return String(v)
	default:
		return String(fmt.Sprint(v))
	}
}

// SheetSource is a range of a Google spreadsheet.
type SheetSource struct {
	Loader        *SheetsLoader
	SpreadsheetID string
	Range         string
}

// Name returns "<id>!<range>".
func (s SheetSource) Name() string {
	if s.Range == "" {
		return s.SpreadsheetID
	}
	return s.SpreadsheetID + "!" + s.Range
}

// Load reads the range.
func (s SheetSource) Load(ctx context.Context) (*Table, error) {
	if s.Loader == nil {
		return nil, fmt.Errorf("no sheets loader configured")
	}
	return s.Loader.Load(ctx, s.SpreadsheetID, s.Range)
}

// ParseSheetRef splits "id!range" into its parts. A missing range is "".
func ParseSheetRef(ref string) (id, rng string, err error) {
	ref = strings.TrimSpace(ref)
	id, rng, _ = strings.Cut(ref, "!")
	if id == "" {
		return "", "", fmt.Errorf("invalid sheet reference %q", ref)
	}
	return id, rng, nil
}
