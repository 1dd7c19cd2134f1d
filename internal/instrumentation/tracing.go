package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for all calimport spans.
const TracerName = "github.com/teemow/calimport"

// Span names.
const (
	SpanImport       = "import.run"
	SpanBulkPrefix   = "calendar.bulk."
	SpanToolPrefix   = "tool."
	SpanGooglePrefix = "google."
)

// Span attribute keys.
const (
	SpanAttrTool         = "mcp.tool"
	SpanAttrService      = "google.service"
	SpanAttrOperation    = "google.operation"
	SpanAttrAccount      = "calimport.account"
	SpanAttrResourceID   = "calimport.resource_id"
	SpanAttrResourceType = "calimport.resource_type"
	SpanAttrReadOnly     = "calimport.read_only"

	SpanAttrRunID     = "calimport.run_id"
	SpanAttrSources   = "calimport.import.sources"
	SpanAttrTables    = "calimport.import.tables"
	SpanAttrRows      = "calimport.import.rows"
	SpanAttrTotal     = "calimport.bulk.total"
	SpanAttrSucceeded = "calimport.bulk.succeeded"
	SpanAttrFailed    = "calimport.bulk.failed"
)

// SpanAttributeBuilder collects span attributes. Empty values are skipped.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

func (b *SpanAttributeBuilder) add(key, value string) *SpanAttributeBuilder {
	if value != "" {
		b.attrs = append(b.attrs, attribute.String(key, value))
	}
	return b
}

// WithTool adds the MCP tool name.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	return b.add(SpanAttrTool, tool)
}

// WithService adds the Google service name.
func (b *SpanAttributeBuilder) WithService(service string) *SpanAttributeBuilder {
	return b.add(SpanAttrService, service)
}

// WithOperation adds the operation type.
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	return b.add(SpanAttrOperation, operation)
}

// WithAccount adds the configured account name.
func (b *SpanAttributeBuilder) WithAccount(account string) *SpanAttributeBuilder {
	return b.add(SpanAttrAccount, account)
}

// WithRunID adds a registration run id.
func (b *SpanAttributeBuilder) WithRunID(runID string) *SpanAttributeBuilder {
	return b.add(SpanAttrRunID, runID)
}

// WithResource adds the resource type and id.
func (b *SpanAttributeBuilder) WithResource(resourceType, resourceID string) *SpanAttributeBuilder {
	return b.add(SpanAttrResourceType, resourceType).add(SpanAttrResourceID, resourceID)
}

// WithReadOnly marks whether the call only reads.
func (b *SpanAttributeBuilder) WithReadOnly(readOnly bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrReadOnly, readOnly))
	return b
}

// Build returns the collected attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartToolSpan starts a server span for an MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, SpanToolPrefix+toolName,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindServer))
}

// StartGoogleAPISpan starts a client span for one Google API call.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return tracer().Start(ctx, SpanGooglePrefix+service+"."+operation,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient))
}

// StartImportSpan starts the span covering load, merge and build of one
// registration's sources.
func StartImportSpan(ctx context.Context, sources int) (context.Context, trace.Span) {
	return tracer().Start(ctx, SpanImport,
		trace.WithAttributes(attribute.Int(SpanAttrSources, sources)))
}

// ImportStageEvent records an import stage with the row count it produced.
// tables is only attached when positive.
func ImportStageEvent(span trace.Span, stage string, rows, tables int) {
	attrs := []attribute.KeyValue{attribute.Int(SpanAttrRows, rows)}
	if tables > 0 {
		attrs = append(attrs, attribute.Int(SpanAttrTables, tables))
	}
	span.AddEvent(stage, trace.WithAttributes(attrs...))
}

// StartBulkSpan starts the span of a bulk insert or delete over total events.
func StartBulkSpan(ctx context.Context, operation, account string, total int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := NewSpanAttributeBuilder().WithOperation(operation).WithAccount(account).Build()
	all = append(all, attribute.Int(SpanAttrTotal, total))
	all = append(all, attrs...)
	return tracer().Start(ctx, SpanBulkPrefix+operation, trace.WithAttributes(all...))
}

// EndBulkSpan records the outcome of a bulk operation and ends the span.
// Any failed item or a cancelled context marks the span as an error.
func EndBulkSpan(ctx context.Context, span trace.Span, succeeded, failed int) {
	span.SetAttributes(
		attribute.Int(SpanAttrSucceeded, succeeded),
		attribute.Int(SpanAttrFailed, failed))
	switch {
	case ctx.Err() != nil:
		SetSpanError(span, ctx.Err())
	case failed > 0:
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d writes failed", failed, succeeded+failed))
	default:
		SetSpanSuccess(span)
	}
	span.End()
}

// SetSpanError records err on the span and marks it failed. A nil err is ignored.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
