package deletion

import "fmt"

// ListError reports a failed listing call. It aborts the whole deletion.
type ListError struct {
	CalendarID string
	Page       int
	Err        error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("listing events of %s failed on page %d: %v", e.CalendarID, e.Page, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}
