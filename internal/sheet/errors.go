package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaUnresolved is wrapped by *SchemaError.
var ErrSchemaUnresolved = errors.New("required columns could not be resolved")

// ErrUnsupportedFormat is returned for source files of an unknown type.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// SchemaError reports required columns missing from the merged table.
type SchemaError struct {
	Missing []string
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: no column matching %s", ErrSchemaUnresolved, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaUnresolved
}

// SourceError reports a source that could not be read. It never aborts
// loading of the other sources.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
