package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Summary represents the aggregated results of a batch operation.
// Total is the number of items submitted; Attempted may be lower when the
// context was cancelled part way through.
type Summary struct {
	Total      int      `json:"total"`
	Attempted  int      `json:"attempted"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Summarize counts the results of a batch of total items.
func Summarize(total int, results []Result) Summary {
	s := Summary{Total: total, Attempted: len(results), Results: results}
	for _, r := range results {
		if r.OK() {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}

// ProgressFunc is called after every attempt with the number of attempts
// so far, the batch size and the latest result.
type ProgressFunc func(done, total int, last Result)

// ProcessBatch executes fn on each item in order and collects results.
// Failures are recorded and processing continues. Processing stops early
// only when ctx is done.
func ProcessBatch[T any](ctx context.Context, items []T, id func(T) string, fn func(context.Context, T) (string, error), progress ProgressFunc) []Result {
	results := make([]Result, 0, len(items))

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		var result Result
		res, err := fn(ctx, item)
		if err != nil {
			result = NewErrorResult(id(item), err)
		} else {
			result = NewSuccessResult(id(item), res)
		}
		results = append(results, result)
		if progress != nil {
			progress(len(results), len(items), result)
		}
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id, message string) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id string, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ParseStringOrArray parses a parameter that can be either a single string or an array of strings
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some clients send arrays as JSON-encoded strings.
		var arr []string
		if strings.HasPrefix(v, "[") && json.Unmarshal([]byte(v), &arr) == nil {
			if len(arr) == 0 {
				return nil, fmt.Errorf("%s cannot be empty", paramName)
			}
			return arr, nil
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result = append(result, v...)
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}
