// Package batch runs a function over many items and collects per-item
// results, so that one failure never aborts the rest of a bulk operation.
//
// This package includes helpers for:
//   - Processing items sequentially with progress reporting
//   - Summarizing partial failures
//   - Parsing tool parameters that accept both single values and arrays
package batch
