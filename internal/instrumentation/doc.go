// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for calimport.
//
// # Metrics
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// Import Metrics:
//   - import_rows_total: Counter of spreadsheet rows by pipeline stage
//   - calendar_event_writes_total: Counter of event inserts and deletes by status
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of interactive logins by result
//   - oauth_token_refresh_total: Counter of token refreshes by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and Google API
// calls (google.<service>.<operation>). Tracing is off unless an exporter is
// configured.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:     "calimport",
//		Enabled:         true,
//		MetricsExporter: instrumentation.ExporterPrometheus,
//		TracingExporter: instrumentation.ExporterNone,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	m := provider.Metrics()
//	m.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate, "success", time.Since(start))
//	m.RecordImportRows(ctx, instrumentation.StageMerged, 42)
//
// A nil *Metrics is valid and records nothing.
package instrumentation
