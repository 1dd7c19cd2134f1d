package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calimport/internal/batch"
	"github.com/teemow/calimport/internal/event"
	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/register"
	"github.com/teemow/calimport/internal/server"
	"github.com/teemow/calimport/internal/sheet"
	"github.com/teemow/calimport/internal/tools/common"
)

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	registerTool := mcp.NewTool("calendar_register_events",
		mcp.WithDescription("Load work items from spreadsheet files and Google Sheets, merge them on the management number and create one calendar event per item"),
		accountParam(),
		mcp.WithString("calendarId",
			mcp.Description("Target calendar ID (defaults to the configured calendar, usually 'primary')"),
		),
		mcp.WithString("files",
			mcp.Description("Path to an .xlsx or .csv file, or a JSON array of paths"),
		),
		mcp.WithString("sheets",
			mcp.Description("Google Sheets reference 'spreadsheetId!range', or a JSON array of references"),
		),
		mcp.WithString("describe",
			mcp.Description("Column name, or JSON array of column names, rendered into the event description in order"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Create all-day events"),
		),
		mcp.WithBoolean("private",
			mcp.Description("Create private events that do not block availability"),
		),
		mcp.WithBoolean("dryRun",
			mcp.Description("Only build the events and return them as CSV without writing to the calendar"),
		),
	)

	s.AddTool(registerTool, common.InstrumentedToolHandler(
		"calendar_register_events", serviceCalendar, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRegisterEvents(ctx, request, sc)
		}))

	return nil
}

// optionalList parses a string-or-array argument that may be absent.
func optionalList(args map[string]interface{}, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	return batch.ParseStringOrArray(v, name)
}

func handleRegisterEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	cfg := sc.Config()

	files, err := optionalList(args, "files")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sheetRefs, err := optionalList(args, "sheets")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 && len(sheetRefs) == 0 {
		return mcp.NewToolResultError("at least one of files or sheets is required"), nil
	}
	describe, err := optionalList(args, "describe")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if describe == nil {
		describe = cfg.Register.DescriptionColumns
	}

	var loader *sheet.SheetsLoader
	if len(sheetRefs) > 0 {
		loader, err = sc.SheetsLoaderForAccount(account)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to access Google Sheets: %v", err)), nil
		}
	}
	sources, err := importer.Sources(files, sheetRefs, loader)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := importer.Run(ctx, sources, importer.Options{
		KeyPrefix:    cfg.KeyPrefix,
		RegionPrefix: cfg.RegionPrefix,
		Location:     sc.Location(),
		Metrics:      sc.Metrics(),
		Event: event.Options{
			DescriptionColumns: describe,
			AllDay:             common.GetBoolArg(args, "allDay", cfg.Register.AllDay),
			Private:            common.GetBoolArg(args, "private", cfg.Register.Private),
		},
	}, sc.Logger())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to prepare events: %v", err)), nil
	}

	var b strings.Builder
	writeWarnings(&b, res.Warnings())

	if len(res.Records) == 0 {
		b.WriteString("No events to register.\n")
		return mcp.NewToolResultText(b.String()), nil
	}

	if common.GetBoolArg(args, "dryRun", false) {
		fmt.Fprintf(&b, "Dry run: %d event(s) would be registered.\n\n", len(res.Records))
		if err := event.WriteCSV(&b, res.Records); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendarID := common.GetStringArg(args, "calendarId", cfg.Register.CalendarID)
	report := register.NewRegistrar(client, sc.Logger(), register.Options{
		Account: account,
		Metrics: sc.Metrics(),
		Audit:   sc.AuditLogger(),
	}).Register(ctx, calendarID, res.Records, nil)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fmt.Fprintf(&b, "Registered %d of %d event(s) in %s.\n\n", report.Successful, report.Total, calendarID)
	b.Write(out)
	return mcp.NewToolResultText(b.String()), nil
}

func writeWarnings(b *strings.Builder, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("Warnings:\n")
	for _, w := range warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	b.WriteString("\n")
}
