package event

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
)

const productID = "-//calimport//calimport//EN"

// WriteICS exports records as an iCalendar file. All-day events use an
// exclusive end date, the way calendars store them.
func WriteICS(w io.Writer, records []Record, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for i, r := range records {
		uid := fmt.Sprintf("%d-%s@calimport", i, r.Key)
		e := cal.AddEvent(uid)
		e.SetDtStampTime(now)
		e.SetSummary(r.Subject)
		if r.Description != "" {
			e.SetDescription(r.Description)
		}
		if r.Location != "" {
			e.SetLocation(r.Location)
		}
		if r.AllDay {
			e.SetAllDayStartAt(r.Start)
			e.SetAllDayEndAt(AllDayEnd(r.End))
		} else {
			e.SetStartAt(r.Start)
			e.SetEndAt(r.End)
		}
		if r.Private {
			e.SetProperty(ics.ComponentPropertyClass, "PRIVATE")
			e.SetProperty(ics.ComponentPropertyTransp, "TRANSPARENT")
		} else {
			e.SetProperty(ics.ComponentPropertyTransp, "OPAQUE")
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// AllDayEnd returns the exclusive end date for an all-day event whose last
// day is end.
func AllDayEnd(end time.Time) time.Time {
	y, m, d := end.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, end.Location())
}
