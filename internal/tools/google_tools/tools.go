package google_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/server"
	"github.com/teemow/calimport/internal/tools/common"
)

// RegisterGoogleTools registers all Google OAuth-related tools with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	authStatusTool := mcp.NewTool("google_auth_status",
		mcp.WithDescription("List the Google accounts calimport holds a token for. Accounts are authorized with 'calimport auth login --account <name>'."),
	)

	s.AddTool(authStatusTool, common.InstrumentedToolHandler(
		"google_auth_status", "oauth", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthStatus(ctx, request, sc)
		}))

	return nil
}

func handleAuthStatus(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	auth := sc.Authenticator()
	if auth == nil {
		return mcp.NewToolResultError("No Google OAuth client is configured. Set google.credentialsfile, or google.clientid and google.clientsecret, in the calimport config."), nil
	}

	accounts, err := auth.Store().Accounts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read token store: %v", err)), nil
	}
	if len(accounts) == 0 {
		return mcp.NewToolResultText("No accounts are authorized yet. Ask the user to run:\n\n  calimport auth login --account default"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Authorized accounts (%d):\n\n", len(accounts))
	for _, acct := range accounts {
		fmt.Fprintf(&b, "- %s\n", acct)
	}
	return mcp.NewToolResultText(b.String()), nil
}
