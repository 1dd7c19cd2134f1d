package google

import (
	calendar "google.golang.org/api/calendar/v3"
	sheets "google.golang.org/api/sheets/v4"
)

// DefaultOAuthScopes are the scopes requested at login: read-write
// calendar access and read-only access to spreadsheets used as sources.
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
	sheets.SpreadsheetsReadonlyScope,
}
