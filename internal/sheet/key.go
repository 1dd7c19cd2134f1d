package sheet

import (
	"strings"

	"golang.org/x/text/width"
)

// DefaultKeyPrefix is the literal token stripped from management numbers.
const DefaultKeyPrefix = "HK"

// CleanManagementNumber normalizes a management number into a merge key.
// Full-width characters are folded to their ASCII forms, every occurrence of
// prefix and every hyphen is removed and surrounding whitespace is trimmed.
// The result is stable under repeated application.
func CleanManagementNumber(raw, prefix string) string {
	s := width.Fold.String(raw)
	for {
		next := s
		if prefix != "" {
			next = strings.ReplaceAll(next, prefix, "")
		}
		next = strings.TrimSpace(strings.ReplaceAll(next, "-", ""))
		if next == s {
			return s
		}
		s = next
	}
}

// CleanKey is CleanManagementNumber applied to a cell. Empty cells give "".
func CleanKey(v Value, prefix string) string {
	if v.IsEmpty() {
		return ""
	}
	return CleanManagementNumber(v.String(), prefix)
}
