package event

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/sheet"
)

// DefaultRegionPrefix is removed from addresses before they become locations.
const DefaultRegionPrefix = "北海道札幌市"

// descriptionSeparator joins description parts.
const descriptionSeparator = " / "

// Options controls how records are built from a merged table.
type Options struct {
	// DescriptionColumns are rendered into the description in this order.
	// Columns absent from the table are ignored.
	DescriptionColumns []string
	AllDay             bool
	Private            bool
}

// RowError reports a merged row that could not be converted.
type RowError struct {
	Row int
	Key string
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Key, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Builder converts merged rows into Records.
type Builder struct {
	loc          *time.Location
	regionPrefix string
	logger       *slog.Logger
}

// NewBuilder returns a Builder interpreting dates in loc and stripping
// regionPrefix from addresses. A nil loc means UTC.
func NewBuilder(loc *time.Location, regionPrefix string, logger *slog.Logger) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		loc:          loc,
		regionPrefix: regionPrefix,
		logger:       logging.WithOperation(logger, "event.build"),
	}
}

// Build converts every row of merged. Rows whose start or end cannot be
// parsed are skipped and reported as *RowError.
func (b *Builder) Build(merged *sheet.Merged, opts Options) ([]Record, []*RowError) {
	if merged.Len() == 0 {
		return nil, nil
	}

	var (
		records []Record
		errs    []*RowError
	)
	schema := merged.Schema
	b.logMissingColumns(merged.Table, opts.DescriptionColumns)
	for i := 0; i < merged.Len(); i++ {
		row := merged.Table.Row(i)
		rec, err := b.buildRow(row, schema, opts)
		if err != nil {
			rowErr := &RowError{Row: row.Index(), Key: row.Get(schema.Key).String(), Err: err}
			b.logger.Warn("skipping row", logging.Row(rowErr.Row), logging.Err(rowErr))
			errs = append(errs, rowErr)
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

// logMissingColumns notes description columns the merged table lacks. A
// column present in several sources only exists with its _x/_y suffixes.
func (b *Builder) logMissingColumns(t *sheet.Table, columns []string) {
	for _, col := range columns {
		if t.HasColumn(col) {
			continue
		}
		var suffixed []string
		for _, s := range []string{col + "_x", col + "_y"} {
			if t.HasColumn(s) {
				suffixed = append(suffixed, s)
			}
		}
		b.logger.Debug("description column not in merged table",
			slog.String("column", col),
			slog.Any("suffixed", suffixed))
	}
}

func (b *Builder) buildRow(row sheet.Row, schema sheet.Schema, opts Options) (Record, error) {
	start, err := ParseTime(row.Get(schema.Start), b.loc)
	if err != nil {
		return Record{}, fmt.Errorf("start: %w", err)
	}
	end, err := ParseTime(row.Get(schema.End), b.loc)
	if err != nil {
		return Record{}, fmt.Errorf("end: %w", err)
	}

	key := row.Get(schema.Key).String()
	rec := Record{
		Key:         key,
		Subject:     key + row.Get(schema.Name).String(),
		Start:       start,
		End:         end,
		AllDay:      opts.AllDay,
		Description: Describe(row, opts.DescriptionColumns),
		Private:     opts.Private,
	}
	if schema.Address != "" {
		rec.Location = b.Location(row.Get(schema.Address))
	}
	return rec, nil
}

// Location renders an address cell, removing the region prefix from text.
func (b *Builder) Location(v sheet.Value) string {
	if v.Kind == sheet.KindString && b.regionPrefix != "" {
		return StripRegionPrefix(v.Str, b.regionPrefix)
	}
	return v.String()
}

// StripRegionPrefix removes every occurrence of prefix from address.
func StripRegionPrefix(address, prefix string) string {
	if prefix == "" || !strings.Contains(address, prefix) {
		return address
	}
	return strings.ReplaceAll(address, prefix, "")
}

// Describe joins the non-empty formatted values of columns with " / ".
func Describe(row sheet.Row, columns []string) string {
	var parts []string
	for _, col := range columns {
		if !row.Has(col) {
			continue
		}
		if part := FormatDescriptionValue(row.Get(col)); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, descriptionSeparator)
}

// FormatDescriptionValue renders a cell for a description. Empty cells are
// "", whole numbers have no fractional part and anything else uses its
// string form.
func FormatDescriptionValue(v sheet.Value) string {
	if v.IsEmpty() {
		return ""
	}
	if v.IsWholeNumber() {
		return fmt.Sprintf("%.0f", v.Num)
	}
	return v.String()
}
