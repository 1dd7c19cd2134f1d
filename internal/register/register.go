// Package register inserts event records into a Google Calendar one at a
// time, collecting a per-record result instead of stopping at the first
// failed insert.
package register

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/teemow/calimport/internal/batch"
	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/event"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
)

// Private extended properties stored on every inserted event.
const (
	PropertyRunID = "calimportRunId"
	PropertyKey   = "calimportKey"
)

// Inserter is the part of the calendar API the registrar needs.
// *calendar.Client implements it.
type Inserter interface {
	CreateEvent(ctx context.Context, calendarID string, ev *gcal.Event) (*calendar.EventSummary, error)
}

// Options carries the optional collaborators of a Registrar.
type Options struct {
	Account string
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// Report is the outcome of one registration run.
type Report struct {
	RunID string `json:"run_id"`
	batch.Summary
}

// Registrar inserts event records.
type Registrar struct {
	client Inserter
	logger *slog.Logger
	opts   Options
	newID  func() string
}

// NewRegistrar creates a Registrar. A nil logger discards output.
func NewRegistrar(client Inserter, logger *slog.Logger, opts Options) *Registrar {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registrar{
		client: client,
		logger: logging.WithOperation(logger, "calendar.register"),
		opts:   opts,
		newID:  uuid.NewString,
	}
}

// Register inserts every record into calendarID. Each insert is attempted
// independently; progress, when set, is called after every attempt.
func (r *Registrar) Register(ctx context.Context, calendarID string, records []event.Record, progress batch.ProgressFunc) Report {
	runID := r.newID()
	logger := r.logger.With(logging.RunID(runID), logging.Calendar(calendarID))
	start := time.Now()

	ctx, span := instrumentation.StartBulkSpan(ctx, instrumentation.OperationCreate, r.opts.Account, len(records),
		instrumentation.NewSpanAttributeBuilder().WithRunID(runID).Build()...)

	results := batch.ProcessBatch(ctx, records, recordID,
		func(ctx context.Context, rec event.Record) (string, error) {
			created, err := r.client.CreateEvent(ctx, calendarID, EventBody(rec, runID))
			if err != nil {
				r.opts.Metrics.RecordEventWrite(ctx, instrumentation.OperationCreate, instrumentation.StatusError)
				logger.Warn("insert failed", slog.String("subject", rec.Subject), logging.Err(err))
				return "", err
			}
			r.opts.Metrics.RecordEventWrite(ctx, instrumentation.OperationCreate, instrumentation.StatusSuccess)
			return created.ID, nil
		},
		progress)

	report := Report{RunID: runID, Summary: batch.Summarize(len(records), results)}
	instrumentation.EndBulkSpan(ctx, span, report.Successful, report.Failed)

	op := &instrumentation.BulkOperation{
		Operation: instrumentation.OperationCreate,
		Account:   r.opts.Account,
		Calendar:  calendarID,
		RunID:     runID,
		Total:     report.Total,
		Succeeded: report.Successful,
		Failed:    report.Failed,
		Duration:  time.Since(start),
	}
	if err := ctx.Err(); err != nil {
		op.Error = err.Error()
	}
	r.opts.Audit.LogBulkOperation(op)

	logger.Info("registration finished",
		slog.Int("total", report.Total),
		slog.Int("succeeded", report.Successful),
		slog.Int("failed", report.Failed))
	return report
}

func recordID(rec event.Record) string {
	if rec.Key != "" {
		return rec.Key
	}
	return rec.Subject
}

// EventBody converts a record into a Calendar API event. All-day events
// use dates with an exclusive end; timed events carry the zone name of
// their start time.
func EventBody(rec event.Record, runID string) *gcal.Event {
	ev := &gcal.Event{
		Summary:      rec.Subject,
		Description:  rec.Description,
		Location:     rec.Location,
		Transparency: "opaque",
	}
	if rec.Private {
		ev.Transparency = "transparent"
		ev.Visibility = "private"
	}

	if rec.AllDay {
		ev.Start = &gcal.EventDateTime{Date: rec.Start.Format(time.DateOnly)}
		ev.End = &gcal.EventDateTime{Date: event.AllDayEnd(rec.End).Format(time.DateOnly)}
	} else {
		ev.Start = dateTime(rec.Start)
		ev.End = dateTime(rec.End)
	}

	props := map[string]string{PropertyRunID: runID}
	if rec.Key != "" {
		props[PropertyKey] = rec.Key
	}
	ev.ExtendedProperties = &gcal.EventExtendedProperties{Private: props}
	return ev
}

func dateTime(t time.Time) *gcal.EventDateTime {
	dt := &gcal.EventDateTime{DateTime: t.Format(time.RFC3339)}
	if zone := t.Location().String(); zone != "Local" {
		dt.TimeZone = zone
	}
	return dt
}
