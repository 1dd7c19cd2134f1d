// Package sheet loads tabular work-item sources and merges them on the
// management number.
//
// A source is an Excel workbook, a CSV file or a Google Sheets range. Each is
// read into a Table of typed cells. Merger folds all tables into one with an
// outer join on the cleaned management number, keeping the first row seen for
// each key, and resolves the columns later stages need by keyword:
//
//	tables, warnings := sheet.LoadAll(ctx, sources, logger)
//	merged, err := sheet.NewMerger("HK", logger).Merge(tables)
//	if errors.Is(err, sheet.ErrSchemaUnresolved) {
//	    // name, start or end column missing
//	}
//
// Column resolution is a case-insensitive substring match. Keywords are tried
// in priority order and, for each keyword, columns in table order; the first
// hit wins.
package sheet
