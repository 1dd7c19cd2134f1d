// Package calendar wraps the Google Calendar v3 API for the operations
// calimport needs: inserting events, listing a time window page by page,
// deleting single events and enumerating the user's calendars.
//
// Every call is traced and recorded in the Google API metrics of the
// supplied *instrumentation.Metrics (which may be nil).
//
//	client, err := calendar.NewClient(ctx, "default", metrics,
//	    option.WithHTTPClient(httpClient))
//	page, err := client.ListEventsPage(ctx, "primary", timeMin, timeMax, "")
package calendar
