package deletion

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout accepted by ParseWindow for the from and to dates.
const DateLayout = time.DateOnly

var (
	// ErrNoCalendar is returned for a window without a calendar id.
	ErrNoCalendar = errors.New("calendar id is required")
	// ErrInvertedWindow is returned when the window ends before it starts.
	ErrInvertedWindow = errors.New("window ends before it starts")
)

// Window selects the events to delete: every event of CalendarID from the
// start of From through the last microsecond of To, in Location. A non-empty
// Keyword further restricts the selection to events whose summary contains
// it (case-sensitive).
type Window struct {
	CalendarID string
	From       time.Time
	To         time.Time
	Location   *time.Location
	Keyword    string
}

// ParseWindow builds a Window from YYYY-MM-DD dates interpreted in loc.
func ParseWindow(calendarID, from, to string, loc *time.Location, keyword string) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	f, err := time.ParseInLocation(DateLayout, strings.TrimSpace(from), loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(to), loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	w := Window{
		CalendarID: calendarID,
		From:       f,
		To:         t,
		Location:   loc,
		Keyword:    keyword,
	}
	return w, w.Validate()
}

// Validate checks the calendar id and date order.
func (w Window) Validate() error {
	if strings.TrimSpace(w.CalendarID) == "" {
		return ErrNoCalendar
	}
	start, end := w.span()
	if end.Before(start) {
		return fmt.Errorf("%w: %s > %s", ErrInvertedWindow,
			w.From.Format(DateLayout), w.To.Format(DateLayout))
	}
	return nil
}

func (w Window) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

func (w Window) span() (time.Time, time.Time) {
	loc := w.location()
	fy, fm, fd := w.From.In(loc).Date()
	ty, tm, td := w.To.In(loc).Date()
	return time.Date(fy, fm, fd, 0, 0, 0, 0, loc),
		time.Date(ty, tm, td, 23, 59, 59, 999999000, loc)
}

// Bounds returns the RFC3339 timeMin and timeMax of the window: the start
// of the first day and 23:59:59.999999 of the last day in the window's
// location.
func (w Window) Bounds() (timeMin, timeMax string) {
	start, end := w.span()
	return start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano)
}

// Matches reports whether an event summary passes the keyword filter.
func (w Window) Matches(summary string) bool {
	return w.Keyword == "" || strings.Contains(summary, w.Keyword)
}
