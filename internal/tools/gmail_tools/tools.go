package gmail_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/gmail"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

// getGmailClient returns the Gmail client for the account named in args.
func getGmailClient(args map[string]any, sc *server.ServerContext) (*gmail.Client, error) {
	account := common.GetAccountFromArgs(args)
	client, err := sc.GmailClientForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Gmail client for account %s: %w", account, err)
	}
	return client, nil
}

// RegisterGmailTools registers all Gmail-related tools with the MCP server
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterLabelTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}
	return nil
}
