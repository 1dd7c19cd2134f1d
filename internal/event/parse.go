package event

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/teemow/calimport/internal/sheet"
)

// ErrNoTime is returned for cells that cannot hold a date.
var ErrNoTime = errors.New("cell does not contain a date")

// Accepted text layouts, tried in order.
var textLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	"2006-1-2",
	"2006.1.2 15:04",
	"2006.1.2",
	"2006年1月2日 15時4分",
	"2006年1月2日 15:04",
	"2006年1月2日15:04",
	"2006年1月2日",
}

// ParseTime converts a cell into a wall-clock time in loc. Numbers are
// spreadsheet serial dates, text is parsed with a fixed set of layouts and
// RFC 3339 timestamps are converted into loc.
func ParseTime(v sheet.Value, loc *time.Location) (time.Time, error) {
	switch v.Kind {
	case sheet.KindTime:
		t := v.Time
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	case sheet.KindNumber:
		return fromSerial(v.Num, loc)
	case sheet.KindString:
		return parseText(v.Str, loc)
	default:
		return time.Time{}, ErrNoTime
	}
}

func fromSerial(serial float64, loc *time.Location) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 || serial > 2958465 {
		return time.Time{}, fmt.Errorf("serial date %v out of range", serial)
	}
	days := math.Floor(serial)
	secs := int(math.Round((serial - days) * 86400))
	// Day zero of the 1900 date system used by Excel and Google Sheets.
	return time.Date(1899, time.December, 30+int(days), 0, 0, secs, 0, loc), nil
}

func parseText(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(width.Fold.String(raw))
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range textLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
