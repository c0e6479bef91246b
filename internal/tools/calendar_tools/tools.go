package calendar_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/calendar"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

// getCalendarClient returns the Calendar client for the account named in args.
func getCalendarClient(args map[string]any, sc *server.ServerContext) (*calendar.Client, error) {
	account := common.GetAccountFromArgs(args)
	client, err := sc.CalendarClientForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Calendar client for account %s: %w", account, err)
	}
	return client, nil
}

// RegisterCalendarTools registers all Calendar-related tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	return nil
}
