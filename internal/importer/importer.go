// Package importer runs the spreadsheet half of a registration: load every
// source, merge them on the management number and build event records.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/calimport/internal/event"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/sheet"
)

// Options configures a run.
type Options struct {
	KeyPrefix    string
	RegionPrefix string
	Location     *time.Location
	Event        event.Options
	Metrics      *instrumentation.Metrics
}

// Result is what a run produced. Records may be empty without an error,
// e.g. when no source has a management number column.
type Result struct {
	Records      []event.Record
	Merged       *sheet.Merged
	SourceErrors []*sheet.SourceError
	RowErrors    []*event.RowError
}

// Warnings returns one line per problem that did not stop the run.
func (r *Result) Warnings() []string {
	var out []string
	for _, e := range r.SourceErrors {
		out = append(out, e.Error())
	}
	if r.Merged != nil {
		for _, name := range r.Merged.Skipped {
			out = append(out, fmt.Sprintf("%s: no management number column, skipped", name))
		}
		if r.Merged.Dropped > 0 {
			out = append(out, fmt.Sprintf("%d row(s) without start or end dropped", r.Merged.Dropped))
		}
	}
	for _, e := range r.RowErrors {
		out = append(out, e.Error())
	}
	return out
}

// Run loads sources and builds records. The only error it returns is a
// *sheet.SchemaError when the merged table lacks the name, start or end
// column; the partial Result is returned alongside it.
func Run(ctx context.Context, sources []sheet.Source, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	m := opts.Metrics

	ctx, span := instrumentation.StartImportSpan(ctx, len(sources))
	defer span.End()

	tables, failures := sheet.LoadAll(ctx, sources, logger)
	res := &Result{SourceErrors: failures}

	loaded := 0
	for _, t := range tables {
		loaded += t.Len()
	}
	m.RecordImportRows(ctx, instrumentation.StageLoaded, loaded)
	instrumentation.ImportStageEvent(span, instrumentation.StageLoaded, loaded, len(tables))

	merged, err := sheet.NewMerger(opts.KeyPrefix, logger).Merge(tables)
	res.Merged = merged
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return res, err
	}
	m.RecordImportRows(ctx, instrumentation.StageDropped, merged.Dropped)
	m.RecordImportRows(ctx, instrumentation.StageMerged, merged.Len())
	instrumentation.ImportStageEvent(span, instrumentation.StageMerged, merged.Len(), 0)

	records, rowErrs := event.NewBuilder(opts.Location, opts.RegionPrefix, logger).Build(merged, opts.Event)
	res.Records = records
	res.RowErrors = rowErrs
	m.RecordImportRows(ctx, instrumentation.StageBuilt, len(records))
	m.RecordImportRows(ctx, instrumentation.StageSkipped, len(rowErrs))
	instrumentation.ImportStageEvent(span, instrumentation.StageBuilt, len(records), 0)
	instrumentation.SetSpanSuccess(span)

	logger.Info("import prepared",
		slog.Int("sources", len(sources)),
		slog.Int("loaded_rows", loaded),
		slog.Int("records", len(records)))
	return res, nil
}

// Sources turns file paths and "id!range" sheet references into sources.
// loader may be nil when sheetRefs is empty.
func Sources(files, sheetRefs []string, loader *sheet.SheetsLoader) ([]sheet.Source, error) {
	sources := make([]sheet.Source, 0, len(files)+len(sheetRefs))
	for _, f := range files {
		sources = append(sources, sheet.FileSource{Path: f})
	}
	if len(sheetRefs) > 0 && loader == nil {
		return nil, fmt.Errorf("sheet sources need an authorized sheets loader")
	}
	for _, ref := range sheetRefs {
		id, rng, err := sheet.ParseSheetRef(ref)
		if err != nil {
			return nil, err
		}
		sources = append(sources, sheet.SheetSource{Loader: loader, SpreadsheetID: id, Range: rng})
	}
	return sources, nil
}
