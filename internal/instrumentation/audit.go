package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures one MCP tool call for audit logging.
type ToolInvocation struct {
	Tool string

	Account     string // configured account name (default, work, ...)
	ServiceName string // Google service (calendar, sheets)
	Operation   string // list, create, delete

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Account != "" && ti.Account != "default" {
		attrs = append(attrs, slog.String("account", ti.Account))
	}
	if ti.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ti.ServiceName))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithAccount sets the Google account name.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithService sets the Google service and operation.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// BulkOperation records a bulk registration or range deletion.
type BulkOperation struct {
	Operation string // create or delete
	Account   string
	Calendar  string
	RunID     string

	// From and To bound a deletion window. Zero for registrations.
	From time.Time
	To   time.Time

	Keyword   string
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Error     string
}

// LogAttrs returns slog attributes. Calendar ids are only included when
// includeIDs is set.
func (b *BulkOperation) LogAttrs(includeIDs bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", b.Operation),
		slog.Int("total", b.Total),
		slog.Int("succeeded", b.Succeeded),
		slog.Int("failed", b.Failed),
		slog.Duration("duration", b.Duration),
	}
	if b.Account != "" {
		attrs = append(attrs, slog.String("account", b.Account))
	}
	if includeIDs && b.Calendar != "" {
		attrs = append(attrs, slog.String("calendar", b.Calendar))
	}
	if b.RunID != "" {
		attrs = append(attrs, slog.String("run_id", b.RunID))
	}
	if !b.From.IsZero() {
		attrs = append(attrs,
			slog.String("from", b.From.Format(time.DateOnly)),
			slog.String("to", b.To.Format(time.DateOnly)))
	}
	if b.Keyword != "" {
		attrs = append(attrs, slog.String("keyword", b.Keyword))
	}
	if b.Error != "" {
		attrs = append(attrs, slog.String("error", b.Error))
	}
	return attrs
}

// AuditLogger writes audit records for tool calls and bulk calendar writes.
// A nil *AuditLogger discards everything.
type AuditLogger struct {
	logger     *slog.Logger
	includeIDs bool
	enabled    bool
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("log_type", "audit")),
		includeIDs: config.IncludeIDs,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs a finished tool invocation.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}
	args := attrsToArgs(ti.LogAttrs())
	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}

// LogBulkOperation logs a finished bulk registration or deletion.
func (al *AuditLogger) LogBulkOperation(b *BulkOperation) {
	if al == nil || !al.enabled {
		return
	}
	args := attrsToArgs(b.LogAttrs(al.includeIDs))
	if b.Failed > 0 || b.Error != "" {
		al.logger.Warn("bulk_operation_partial", args...)
	} else {
		al.logger.Info("bulk_operation", args...)
	}
}

func attrsToArgs(attrs []slog.Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}
