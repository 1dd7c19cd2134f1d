package deletion

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/calimport/internal/batch"
	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
)

// Client is the part of the calendar API the deleter needs.
// *calendar.Client implements it.
type Client interface {
	ListEventsPage(ctx context.Context, calendarID, timeMin, timeMax, pageToken string) (calendar.EventPage, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Plan is the outcome of the list and filter phases.
type Plan struct {
	Window Window
	Listed int
	Events []calendar.EventSummary
}

// Summary is the outcome of a range deletion.
type Summary struct {
	Listed  int            `json:"listed"`
	Matched int            `json:"matched"`
	Deleted int            `json:"deleted"`
	Failed  int            `json:"failed"`
	Results []batch.Result `json:"results,omitempty"`
}

// Options carries the optional collaborators of a Deleter.
type Options struct {
	Account string
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
}

// Deleter deletes events in a window.
type Deleter struct {
	client Client
	logger *slog.Logger
	opts   Options
}

// NewDeleter creates a Deleter. A nil logger discards output.
func NewDeleter(client Client, logger *slog.Logger, opts Options) *Deleter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Deleter{
		client: client,
		logger: logging.WithOperation(logger, "calendar.delete_range"),
		opts:   opts,
	}
}

// Collect lists every event of the window, following page tokens until
// none is returned, and keeps those matching the keyword. Any listing
// error is returned as a *ListError and no partial plan is produced.
func (d *Deleter) Collect(ctx context.Context, w Window) (*Plan, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	timeMin, timeMax := w.Bounds()

	plan := &Plan{Window: w}
	token := ""
	for pageNum := 1; ; pageNum++ {
		page, err := d.client.ListEventsPage(ctx, w.CalendarID, timeMin, timeMax, token)
		if err != nil {
			d.logger.Error("listing events failed",
				logging.Calendar(w.CalendarID), slog.Int("page", pageNum), logging.Err(err))
			return nil, &ListError{CalendarID: w.CalendarID, Page: pageNum, Err: err}
		}
		plan.Listed += len(page.Events)
		for _, ev := range page.Events {
			if w.Matches(ev.Summary) {
				plan.Events = append(plan.Events, ev)
			}
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	d.logger.Info("collected events",
		logging.Calendar(w.CalendarID),
		slog.String("time_min", timeMin),
		slog.String("time_max", timeMax),
		slog.Int("listed", plan.Listed),
		slog.Int("matched", len(plan.Events)))
	return plan, nil
}

// DeleteEvents deletes every event of the plan. A failed delete is recorded
// in the summary and the remaining events are still attempted. progress,
// when set, is called after every attempt.
func (d *Deleter) DeleteEvents(ctx context.Context, plan *Plan, progress batch.ProgressFunc) Summary {
	if plan == nil {
		return Summary{}
	}
	start := time.Now()
	calendarID := plan.Window.CalendarID

	ctx, span := instrumentation.StartBulkSpan(ctx, instrumentation.OperationDelete, d.opts.Account, len(plan.Events))

	results := batch.ProcessBatch(ctx, plan.Events,
		func(ev calendar.EventSummary) string { return ev.ID },
		func(ctx context.Context, ev calendar.EventSummary) (string, error) {
			err := d.client.DeleteEvent(ctx, calendarID, ev.ID)
			if err != nil {
				d.opts.Metrics.RecordEventWrite(ctx, instrumentation.OperationDelete, instrumentation.StatusError)
				d.logger.Warn("delete failed",
					slog.String("event_id", ev.ID), slog.String("summary", ev.Summary), logging.Err(err))
				return "", err
			}
			d.opts.Metrics.RecordEventWrite(ctx, instrumentation.OperationDelete, instrumentation.StatusSuccess)
			return ev.Summary, nil
		},
		progress)

	bs := batch.Summarize(len(plan.Events), results)
	summary := Summary{
		Listed:  plan.Listed,
		Matched: len(plan.Events),
		Deleted: bs.Successful,
		Failed:  bs.Failed,
		Results: results,
	}
	instrumentation.EndBulkSpan(ctx, span, summary.Deleted, summary.Failed)

	op := &instrumentation.BulkOperation{
		Operation: instrumentation.OperationDelete,
		Account:   d.opts.Account,
		Calendar:  calendarID,
		From:      plan.Window.From,
		To:        plan.Window.To,
		Keyword:   plan.Window.Keyword,
		Total:     summary.Matched,
		Succeeded: summary.Deleted,
		Failed:    summary.Failed,
		Duration:  time.Since(start),
	}
	if err := ctx.Err(); err != nil {
		op.Error = err.Error()
	}
	d.opts.Audit.LogBulkOperation(op)

	d.logger.Info("deletion finished",
		logging.Calendar(calendarID),
		slog.Int("deleted", summary.Deleted),
		slog.Int("failed", summary.Failed))
	return summary
}

// DeleteRange collects the window and deletes what it found. On a listing
// failure it returns a zero Summary and the *ListError without deleting
// anything.
func (d *Deleter) DeleteRange(ctx context.Context, w Window, progress batch.ProgressFunc) (Summary, error) {
	plan, err := d.Collect(ctx, w)
	if err != nil {
		return Summary{}, err
	}
	return d.DeleteEvents(ctx, plan, progress), nil
}
