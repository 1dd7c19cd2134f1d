// Package cmd implements the command-line interface for calimport.
//
// This package provides the following commands:
//   - register: Merge spreadsheet sources and create one calendar event per work item
//   - delete: Delete the events of a date range, optionally filtered by a title keyword
//   - calendars: List the calendars events can be written to
//   - auth: Log in to a Google account and show stored tokens
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
