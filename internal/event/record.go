package event

import (
	"fmt"
	"strings"
	"time"
)

// Intermediate CSV columns.
const (
	ColSubject     = "Subject"
	ColStartDate   = "Start Date"
	ColStartTime   = "Start Time"
	ColEndDate     = "End Date"
	ColEndTime     = "End Time"
	ColAllDay      = "All Day Event"
	ColDescription = "Description"
	ColLocation    = "Location"
	ColPrivate     = "Private"

	// ColKey follows Header in exported files so the management number
	// survives a re-import. It is optional when reading.
	ColKey = "Management Number"
)

// Header is the column order of an intermediate row.
var Header = []string{
	ColSubject, ColStartDate, ColStartTime, ColEndDate, ColEndTime,
	ColAllDay, ColDescription, ColLocation, ColPrivate,
}

const (
	dateLayout = "2006/01/02"
	timeLayout = "15:04"
)

// Record is one event ready to be written to a calendar.
type Record struct {
	// Key is the cleaned management number. It is not part of Row; WriteCSV
	// stores it in ColKey.
	Key         string
	Subject     string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Description string
	Location    string
	Private     bool
}

// Row renders the record in Header order.
func (r Record) Row() []string {
	return []string{
		r.Subject,
		r.Start.Format(dateLayout),
		r.Start.Format(timeLayout),
		r.End.Format(dateLayout),
		r.End.Format(timeLayout),
		formatBool(r.AllDay),
		r.Description,
		r.Location,
		formatBool(r.Private),
	}
}

// ParseRow reads a row in Header order. Dates and times are interpreted in loc.
func ParseRow(row []string, loc *time.Location) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}

	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, row[1]+" "+row[2], loc)
	if err != nil {
		return Record{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout+" "+timeLayout, row[3]+" "+row[4], loc)
	if err != nil {
		return Record{}, fmt.Errorf("invalid end: %w", err)
	}
	allDay, err := parseBool(row[5])
	if err != nil {
		return Record{}, fmt.Errorf("invalid %s: %w", ColAllDay, err)
	}
	private, err := parseBool(row[8])
	if err != nil {
		return Record{}, fmt.Errorf("invalid %s: %w", ColPrivate, err)
	}

	return Record{
		Subject:     row[0],
		Start:       start,
		End:         end,
		AllDay:      allDay,
		Description: row[6],
		Location:    row[7],
		Private:     private,
	}, nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false", "":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}
