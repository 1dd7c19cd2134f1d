// Package logging provides structured logging helpers for calimport.
//
// All packages log through log/slog. This package builds the process logger
// from configuration and keeps attribute names consistent, so that log lines
// from the loader, the merger and the calendar writers can be correlated.
//
// # Usage Patterns
//
// Build the logger once in the command layer:
//
//	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
//
// Scope it to an operation and attach attributes:
//
//	logger = logging.WithOperation(logger, "calendar.delete_range")
//	logger.Info("deleted events",
//	    logging.Calendar(calendarID),
//	    logging.Status(logging.StatusSuccess))
//
// # Tokens
//
// OAuth tokens are never logged. Use SanitizeToken when a token needs to show
// up in diagnostics.
package logging
