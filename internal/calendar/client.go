package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calimport/internal/instrumentation"
)

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	account string
	metrics *instrumentation.Metrics
}

// NewClient creates a Calendar client for the named account. Authentication
// comes from opts, usually option.WithHTTPClient with an OAuth2 client.
func NewClient(ctx context.Context, account string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{
		svc:     svc,
		account: account,
		metrics: metrics,
	}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// observe starts a span for a Calendar API call and returns a func that
// finishes it and records the operation metric.
func (c *Client) observe(ctx context.Context, operation, resourceID string) (context.Context, func(error)) {
	attrs := instrumentation.NewSpanAttributeBuilder().
		WithAccount(c.account).
		WithResource("calendar", resourceID).
		WithReadOnly(operation == instrumentation.OperationList).
		Build()
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation, attrs...)
	start := time.Now()

	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
	}
}

// CreateEvent inserts event into the calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*EventSummary, error) {
	ctx, done := c.observe(ctx, instrumentation.OperationCreate, calendarID)

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// ListEventsPage returns one page of single (expanded) events between
// timeMin and timeMax, ordered by start time. An empty pageToken requests
// the first page.
func (c *Client) ListEventsPage(ctx context.Context, calendarID, timeMin, timeMax, pageToken string) (EventPage, error) {
	ctx, done := c.observe(ctx, instrumentation.OperationList, calendarID)

	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	events, err := call.Do()
	done(err)
	if err != nil {
		return EventPage{}, fmt.Errorf("failed to list events: %w", err)
	}

	page := EventPage{NextPageToken: events.NextPageToken}
	for _, event := range events.Items {
		page.Events = append(page.Events, toEventSummary(event))
	}
	return page, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	ctx, done := c.observe(ctx, instrumentation.OperationDelete, calendarID)

	err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

// ListCalendars lists all calendars accessible to the user, following
// pagination.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	ctx, done := c.observe(ctx, instrumentation.OperationList, "calendarList")

	var calendars []CalendarInfo
	err := c.svc.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, entry := range list.Items {
			calendars = append(calendars, toCalendarInfo(entry))
		}
		return nil
	})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	return calendars, nil
}
