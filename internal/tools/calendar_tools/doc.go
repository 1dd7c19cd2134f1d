// Package calendar_tools provides MCP (Model Context Protocol) tools for
// registering spreadsheet work items in Google Calendar and clearing date
// ranges again.
//
// Tools:
//   - calendar_list_calendars: calendars the account can write to
//   - calendar_register_events: load and merge sources, insert one event per work item
//   - calendar_preview_range: list the events a range deletion would remove
//   - calendar_delete_range: delete the events in a date range
//
// All tools take an optional account argument for multi-account setups.
package calendar_tools
