package sheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

// Value is a single spreadsheet cell.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

// Empty is the missing cell.
var Empty = Value{}

// String returns a string cell. Blank strings become Empty.
func String(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Empty
	}
	return Value{Kind: KindString, Str: s}
}

// Number returns a numeric cell.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// Bool returns a boolean cell.
func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Time returns a date/time cell.
func Time(t time.Time) Value {
	return Value{Kind: KindTime, Time: t}
}

// IsEmpty reports whether the cell holds no value.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// IsWholeNumber reports whether v is a number without a fractional part.
func (v Value) IsWholeNumber() bool {
	return v.Kind == KindNumber && !math.IsInf(v.Num, 0) && v.Num == math.Trunc(v.Num)
}

// String renders the cell for display. Whole numbers have no fractional part.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindTime:
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// inferValue types a raw text cell: blank is Empty, numeric text without a
// leading zero is a Number, everything else stays a String.
func inferValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Empty
	}
	if hasLeadingZero(s) {
		return String(raw)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f)
	}
	return String(raw)
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}
