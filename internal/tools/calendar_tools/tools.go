package calendar_tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/server"
)

const serviceCalendar = "calendar"

// accountParam is shared by every tool.
func accountParam() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
	)
}

// getCalendarClient retrieves or creates a calendar client for the specified account
func getCalendarClient(account string, sc *server.ServerContext) (*calendar.Client, error) {
	client, err := sc.CalendarClientForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("calendar client for account %q: %w", account, err)
	}
	return client, nil
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP
// server. In read-only mode the tools that write to a calendar are left out.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	if !readOnly {
		if err := RegisterEventTools(s, sc); err != nil {
			return fmt.Errorf("failed to register event tools: %w", err)
		}
	}

	if err := RegisterRangeTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register range tools: %w", err)
	}

	return nil
}
