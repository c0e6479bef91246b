package common

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/aura-assistant/aura/internal/instrumentation"
	"github.com/aura-assistant/aura/internal/logging"
	"github.com/aura-assistant/aura/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with a tool span, metrics and
// audit logging. A result with IsError set counts as a failed invocation.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		table := StringArg(args, "table_name")
		if table == "" {
			table = StringArg(args, "table")
		}

		var attrs []attribute.KeyValue
		if table != "" {
			attrs = append(attrs, attribute.String(instrumentation.SpanAttrTable, table))
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)

		invocation := instrumentation.NewToolInvocation(toolName).WithSpanContext(ctx)
		if table != "" {
			invocation.WithTable(table)
		}
		if _, ok := args["account"]; ok {
			invocation.WithAccount(GetAccountFromArgs(args))
		}

		result, err := handler(ctx, request)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(resultText(result))
		}
		invocation.Complete(failure)
		instrumentation.EndSpan(span, failure)

		sc.Metrics().RecordToolInvocation(ctx, toolName, invocation.Status(), invocation.Duration)
		if auditLogger := sc.AuditLogger(); auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}
		if failure != nil {
			sc.Logger().Debug("tool invocation failed", logging.Tool(toolName), logging.Err(failure))
		}
		return result, err
	}
}

// resultText returns the first text content of result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return "tool returned an error result"
}
