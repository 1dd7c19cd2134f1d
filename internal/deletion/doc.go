// Package deletion removes every calendar event inside a date window.
//
// Deletion runs in two phases. Collect pages through the window and applies
// the optional keyword filter; any listing failure aborts with a *ListError
// and nothing is deleted. DeleteEvents then deletes the collected events one
// at a time, recording each failure and carrying on with the rest.
// DeleteRange runs both phases back to back.
package deletion
