package calendar

import (
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventSummary is the part of a calendar event calimport reads back.
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Status      string
	Visibility  string
	HTMLLink    string
}

// EventPage is one page of an events listing.
type EventPage struct {
	Events        []EventSummary
	NextPageToken string
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID         string
	Summary    string
	TimeZone   string
	Primary    bool
	AccessRole string // "owner", "writer", "reader", "freeBusyReader"
}

// Writable reports whether events can be inserted into the calendar.
func (c CalendarInfo) Writable() bool {
	return c.AccessRole == "owner" || c.AccessRole == "writer"
}

// DefaultExclude lists calendar id fragments hidden from calendar pickers.
var DefaultExclude = []string{"holiday"}

// WritableCalendars drops read-only calendars and those whose id contains
// one of the exclude substrings.
func WritableCalendars(cals []CalendarInfo, exclude []string) []CalendarInfo {
	var out []CalendarInfo
	for _, c := range cals {
		if !c.Writable() || excluded(c.ID, exclude) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func excluded(id string, exclude []string) bool {
	for _, sub := range exclude {
		if sub != "" && strings.Contains(id, sub) {
			return true
		}
	}
	return false
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		Visibility:  event.Visibility,
		HTMLLink:    event.HtmlLink,
	}
	summary.Start, summary.AllDay = parseEventTime(event.Start)
	summary.End, _ = parseEventTime(event.End)
	return summary
}

// parseEventTime returns the instant of dt and whether it is a date-only value.
func parseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t, false
		}
	}
	if dt.Date != "" {
		if t, err := time.Parse(time.DateOnly, dt.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toCalendarInfo converts a Google Calendar list entry to CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:         entry.Id,
		Summary:    entry.Summary,
		TimeZone:   entry.TimeZone,
		Primary:    entry.Primary,
		AccessRole: entry.AccessRole,
	}
}
