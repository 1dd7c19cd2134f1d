package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

const (
	testAccount      = "work"
	testToolRegister = "calendar_register_events"
	testToolDelete   = "calendar_delete_range"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolRegister)

	if ti.Tool != testToolRegister {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolRegister)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolDelete).CompleteWithError(errors.New("permission denied"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "permission denied" {
		t.Errorf("Error = %q, want %q", ti.Error, "permission denied")
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolDelete).
		WithAccount(testAccount).
		WithService(ServiceCalendar, OperationDelete)
	ti.TraceID = "abc123"
	ti.CompleteWithError(errors.New("boom"))

	attrs := map[string]string{}
	for _, a := range ti.LogAttrs() {
		attrs[a.Key] = a.Value.String()
	}

	for key, want := range map[string]string{
		"tool":      testToolDelete,
		"account":   testAccount,
		"service":   ServiceCalendar,
		"operation": OperationDelete,
		"trace_id":  "abc123",
		"error":     "boom",
		"success":   "false",
	} {
		if attrs[key] != want {
			t.Errorf("attr %s = %q, want %q", key, attrs[key], want)
		}
	}
}

func TestToolInvocation_LogAttrs_DefaultAccountOmitted(t *testing.T) {
	ti := NewToolInvocation(testToolRegister).WithAccount("default").CompleteSuccess()
	for _, a := range ti.LogAttrs() {
		if a.Key == "account" {
			t.Error("default account should not be logged")
		}
	}
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation(testToolRegister).WithSpanContext(context.Background())
	if ti.TraceID != "" || ti.SpanID != "" {
		t.Errorf("expected empty trace context, got %q/%q", ti.TraceID, ti.SpanID)
	}
}

func TestBulkOperation_LogAttrs(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	b := &BulkOperation{
		Operation: OperationDelete,
		Calendar:  "team@group.calendar.google.com",
		From:      time.Date(2024, 5, 1, 0, 0, 0, 0, loc),
		To:        time.Date(2024, 5, 3, 0, 0, 0, 0, loc),
		Keyword:   "HK",
		Total:     3,
		Succeeded: 2,
		Failed:    1,
	}

	withoutIDs := map[string]string{}
	for _, a := range b.LogAttrs(false) {
		withoutIDs[a.Key] = a.Value.String()
	}
	if _, ok := withoutIDs["calendar"]; ok {
		t.Error("calendar id should be omitted without includeIDs")
	}
	if withoutIDs["from"] != "2024-05-01" || withoutIDs["to"] != "2024-05-03" {
		t.Errorf("window = %s..%s", withoutIDs["from"], withoutIDs["to"])
	}

	found := false
	for _, a := range b.LogAttrs(true) {
		if a.Key == "calendar" {
			found = true
		}
	}
	if !found {
		t.Error("calendar id should be present with includeIDs")
	}
}

func TestAuditLogger_LogBulkOperation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: true})

	al.LogBulkOperation(&BulkOperation{Operation: OperationCreate, RunID: "run-1", Total: 2, Succeeded: 2})
	al.LogBulkOperation(&BulkOperation{Operation: OperationDelete, Total: 3, Succeeded: 2, Failed: 1})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}

	var first, second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if first["msg"] != "bulk_operation" || first["run_id"] != "run-1" || first["log_type"] != "audit" {
		t.Errorf("unexpected first line: %v", first)
	}
	if second["msg"] != "bulk_operation_partial" || second["level"] != "WARN" {
		t.Errorf("unexpected second line: %v", second)
	}
}

func TestAuditLogger_DisabledAndNil(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})
	al.LogToolInvocation(NewToolInvocation(testToolRegister).CompleteSuccess())
	al.LogBulkOperation(&BulkOperation{Operation: OperationCreate})
	if buf.Len() != 0 {
		t.Errorf("disabled audit logger wrote %q", buf.String())
	}

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(NewToolInvocation(testToolRegister).CompleteSuccess())
	nilLogger.LogBulkOperation(&BulkOperation{})
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), AuditLoggingConfig{Enabled: true})

	al.LogToolInvocation(NewToolInvocation(testToolRegister).CompleteSuccess())
	al.LogToolInvocation(NewToolInvocation(testToolDelete).CompleteWithError(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, "msg=tool_executed") || !strings.Contains(out, "msg=tool_failed") {
		t.Errorf("unexpected audit output: %s", out)
	}
}
