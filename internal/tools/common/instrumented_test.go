package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calimport/internal/config"
	"github.com/teemow/calimport/internal/server"
)

func newServerContext(t *testing.T) (*server.ServerContext, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	sc, err := server.NewServerContext(context.Background(), server.Options{
		Config: config.Default(),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, &buf
}

func requestWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	sc, logs := newServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", "calendar", "list", sc, handler)
	result, err := wrapped(context.Background(), requestWithArgs(map[string]interface{}{"account": "work"}))

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil || result.IsError {
		t.Errorf("expected successful result, got %+v", result)
	}

	out := logs.String()
	if !strings.Contains(out, `"msg":"tool_executed"`) {
		t.Errorf("expected audit line, got %s", out)
	}
	if !strings.Contains(out, `"account":"work"`) {
		t.Errorf("expected account in audit line, got %s", out)
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	sc, logs := newServerContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandler("test_tool", "calendar", "delete", sc, handler)
	_, err := wrapped(context.Background(), mcp.CallToolRequest{})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if !strings.Contains(logs.String(), `"msg":"tool_failed"`) {
		t.Errorf("expected failure audit line, got %s", logs.String())
	}
}

func TestInstrumentedToolHandler_ToolResultError(t *testing.T) {
	sc, logs := newServerContext(t)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("bad input"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", "calendar", "create", sc, handler)
	result, err := wrapped(context.Background(), mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected error result to pass through")
	}
	if !strings.Contains(logs.String(), `"success":false`) {
		t.Errorf("expected unsuccessful audit line, got %s", logs.String())
	}
}

func TestInstrumentedToolHandler_AddTool(t *testing.T) {
	sc, logs := newServerContext(t)

	var h mcpserver.ToolHandlerFunc = InstrumentedToolHandler("calendar_list_calendars", "calendar", "list", sc,
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("ok"), nil
		})

	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	s.AddTool(mcp.NewTool("calendar_list_calendars"), h)

	var names []string
	for _, st := range s.ListTools() {
		names = append(names, st.Tool.Name)
	}
	if len(names) != 1 || names[0] != "calendar_list_calendars" {
		t.Fatalf("registered tools = %v", names)
	}

	result, err := h(context.Background(), requestWithArgs(nil))
	if err != nil || result == nil || result.IsError {
		t.Fatalf("handler result = %+v, err = %v", result, err)
	}
	if !strings.Contains(logs.String(), `"tool":"calendar_list_calendars"`) {
		t.Errorf("expected tool in audit line, got %s", logs.String())
	}
}
