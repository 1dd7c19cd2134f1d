package sheet

import "strings"

// Column keywords as they appear in the source workbooks.
const (
	KeywordKey      = "管理番号"
	KeywordName     = "物件名"
	KeywordStart    = "予定開始"
	KeywordEnd      = "予定終了"
	KeywordAddress  = "住所"
	KeywordLocation = "所在地"
)

// KeyColumn is the canonical column holding the cleaned management number.
const KeyColumn = KeywordKey

// ResolveColumn returns the first column whose name contains one of the
// keywords, ignoring case. Keywords are tried in order; for each keyword the
// columns are scanned in order. It returns "" when nothing matches.
func ResolveColumn(columns []string, keywords ...string) string {
	for _, kw := range keywords {
		needle := strings.ToLower(kw)
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col), needle) {
				return col
			}
		}
	}
	return ""
}

// Schema holds the resolved column names of a merged table.
// Address is empty when no address column exists.
type Schema struct {
	Key     string
	Name    string
	Start   string
	End     string
	Address string
}

// ResolveSchema resolves the columns event building needs. Missing required
// columns are reported as a *SchemaError.
func ResolveSchema(columns []string) (Schema, error) {
	s := Schema{
		Key:     KeyColumn,
		Name:    ResolveColumn(columns, KeywordName),
		Start:   ResolveColumn(columns, KeywordStart),
		End:     ResolveColumn(columns, KeywordEnd),
		Address: ResolveColumn(columns, KeywordAddress, KeywordLocation),
	}

	var missing []string
	if s.Name == "" {
		missing = append(missing, KeywordName)
	}
	if s.Start == "" {
		missing = append(missing, KeywordStart)
	}
	if s.End == "" {
		missing = append(missing, KeywordEnd)
	}
	if len(missing) > 0 {
		return s, &SchemaError{Missing: missing, Columns: columns}
	}
	return s, nil
}
