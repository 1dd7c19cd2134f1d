package calendar_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calimport/internal/deletion"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/server"
	"github.com/teemow/calimport/internal/tools/common"
)

// RegisterRangeTools registers the date range preview tool and, unless
// readOnly, the delete tool.
func RegisterRangeTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	rangeParams := []mcp.ToolOption{
		accountParam(),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("First day of the range, YYYY-MM-DD, in the configured time zone"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Last day of the range, YYYY-MM-DD, inclusive"),
		),
		mcp.WithString("keyword",
			mcp.Description("Only events whose title contains this text (case-sensitive)"),
		),
	}

	previewTool := mcp.NewTool("calendar_preview_range",
		append([]mcp.ToolOption{
			mcp.WithDescription("List the events calendar_delete_range would delete, without deleting anything"),
		}, rangeParams...)...,
	)
	s.AddTool(previewTool, common.InstrumentedToolHandler(
		"calendar_preview_range", serviceCalendar, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePreviewRange(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	deleteTool := mcp.NewTool("calendar_delete_range",
		append([]mcp.ToolOption{
			mcp.WithDescription("Delete every event in a date range, optionally filtered by a title keyword. Requires confirm=true."),
			mcp.WithBoolean("confirm",
				mcp.Required(),
				mcp.Description("Must be true. Run calendar_preview_range first to see what will be deleted."),
			),
		}, rangeParams...)...,
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandler(
		"calendar_delete_range", serviceCalendar, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteRange(ctx, request, sc)
		}))

	return nil
}

// rangeRequest parses the shared arguments and builds a deleter.
func rangeRequest(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*deletion.Deleter, deletion.Window, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	w, err := deletion.ParseWindow(
		common.GetStringArg(args, "calendarId", ""),
		common.GetStringArg(args, "from", ""),
		common.GetStringArg(args, "to", ""),
		sc.Location(),
		common.GetStringArg(args, "keyword", ""),
	)
	if err != nil {
		return nil, deletion.Window{}, err
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return nil, deletion.Window{}, err
	}
	d := deletion.NewDeleter(client, sc.Logger(), deletion.Options{
		Account: account,
		Metrics: sc.Metrics(),
		Audit:   sc.AuditLogger(),
	})
	return d, w, nil
}

func handlePreviewRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	d, w, err := rangeRequest(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	plan, err := d.Collect(ctx, w)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d event(s) between %s and %s", len(plan.Events),
		w.From.Format(deletion.DateLayout), w.To.Format(deletion.DateLayout))
	if w.Keyword != "" {
		fmt.Fprintf(&b, " matching %q", w.Keyword)
	}
	fmt.Fprintf(&b, " (%d listed):\n\n", plan.Listed)
	for i, ev := range plan.Events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ev.Summary)
		fmt.Fprintf(&b, "   ID: %s\n", ev.ID)
		if ev.AllDay {
			fmt.Fprintf(&b, "   Date: %s\n", ev.Start.Format(deletion.DateLayout))
		} else {
			fmt.Fprintf(&b, "   Start: %s\n", ev.Start.In(w.Location).Format(time.DateTime))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleDeleteRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if !common.GetBoolArg(request.GetArguments(), "confirm", false) {
		return mcp.NewToolResultError("confirm must be true to delete events"), nil
	}

	d, w, err := rangeRequest(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := d.DeleteRange(ctx, w, nil)
	if err != nil {
		var listErr *deletion.ListError
		if errors.As(err, &listErr) {
			return mcp.NewToolResultError(fmt.Sprintf("Nothing was deleted: %v", err)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d of %d event(s).\n\n%s", summary.Deleted, summary.Matched, out)), nil
}
