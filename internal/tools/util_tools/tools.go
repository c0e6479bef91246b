package util_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/tools/common"
)

// now is replaced in tests.
var now = time.Now

// RegisterUtilTools registers the utility tools with the MCP server.
// They are read-only and available in every mode.
func RegisterUtilTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	currentTimeTool := mcp.NewTool("get_current_time",
		mcp.WithDescription("Get the current date and time in RFC3339 format"),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone (e.g., 'Europe/Berlin'). Defaults to $AURA_TIMEZONE or UTC."),
		),
	)
	s.AddTool(currentTimeTool, common.InstrumentedToolHandler("get_current_time", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCurrentTime(ctx, request, sc)
		}))

	return nil
}

func handleGetCurrentTime(_ context.Context, request mcp.CallToolRequest, _ *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	loc, err := common.LoadLocation(common.StringArg(args, "timezone"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t := now().In(loc)
	return mcp.NewToolResultText(fmt.Sprintf("Current time in %s: %s (%s)",
		loc.String(), t.Format(time.RFC3339), t.Weekday())), nil
}
