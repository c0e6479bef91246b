package vector_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/logging"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/store"
	"github.com/aura-assistant/aura/internal/tools/common"
)

const (
	defaultSearchLimit = 10
	maxResultLimit     = 1000
)

// RegisterEntityTools registers row tools with the MCP server
func RegisterEntityTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	getEntityTool := mcp.NewTool("get_lancedb_entity",
		mcp.WithDescription("Retrieve entities from a table that match filter conditions."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("The name of the table to get entities from"),
		),
		mcp.WithArray("conditions",
			mcp.Required(),
			mcp.Description(conditionsDescription),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of entities to return (default: all, max: %d)", maxResultLimit)),
		),
	)
	s.AddTool(getEntityTool, common.InstrumentedToolHandler("get_lancedb_entity", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEntity(ctx, request, sc)
		}))

	searchEntityTool := mcp.NewTool("search_lancedb_entity",
		mcp.WithDescription("Search entities in a table by vector similarity to a text query. "+
			"Optional pre-filter conditions are applied before the semantic search."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("The name of the table to search entities in"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to find similar entities for"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results to return (default: %d)", defaultSearchLimit)),
		),
		mcp.WithArray("conditions",
			mcp.Description("Optional pre-filter. "+conditionsDescription),
			mcp.Items(map[string]any{"type": "object"}),
		),
	)
	s.AddTool(searchEntityTool, common.InstrumentedToolHandler("search_lancedb_entity", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEntity(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createEntityTool := mcp.NewTool("create_lancedb_entity",
		mcp.WithDescription("Create a new entity in a table. Embedded text fields are vectorized for similarity search."),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("The name of the table to create the entity in"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("The entity data to insert, keyed by column name"),
		),
	)
	s.AddTool(createEntityTool, common.InstrumentedToolHandler("create_lancedb_entity", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEntity(ctx, request, sc)
		}))

	updateEntityTool := mcp.NewTool("update_lancedb_entity",
		mcp.WithDescription("Update the entities of a table that match filter conditions."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("The name of the table to update entities in"),
		),
		mcp.WithArray("conditions",
			mcp.Required(),
			mcp.Description(conditionsDescription),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("The new column values"),
		),
	)
	s.AddTool(updateEntityTool, common.InstrumentedToolHandler("update_lancedb_entity", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEntity(ctx, request, sc)
		}))

	deleteEntityTool := mcp.NewTool("delete_lancedb_entity",
		mcp.WithDescription("Delete the entities of a table that match filter conditions."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("The name of the table to delete entities from"),
		),
		mcp.WithArray("conditions",
			mcp.Required(),
			mcp.Description(conditionsDescription),
			mcp.Items(map[string]any{"type": "object"}),
		),
	)
	s.AddTool(deleteEntityTool, common.InstrumentedToolHandler("delete_lancedb_entity", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEntity(ctx, request, sc)
		}))

	return nil
}

func limitArg(args map[string]any, def int) (int, error) {
	limit, err := common.IntArg(args, "limit", def)
	if err != nil {
		return 0, err
	}
	if limit < 0 {
		return 0, fmt.Errorf("limit must not be negative")
	}
	if limit > maxResultLimit {
		limit = maxResultLimit
	}
	return limit, nil
}

func handleGetEntity(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	predicate, where, err := parseConditions(args, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid conditions: %v", err)), nil
	}
	limit, err := limitArg(args, maxResultLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	table, err := sc.Store().OpenTable(ctx, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open table: %v", err)), nil
	}
	rows, err := table.Query(ctx, predicate, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get entities: %v", err)), nil
	}
	if rows == nil {
		rows = []store.Row{}
	}

	summary := fmt.Sprintf("Retrieved %d entities from table %s", len(rows), tableName)
	if where != "" {
		summary += " where " + where
	}
	return common.JSONResult(summary+":", rows)
}

func handleSearchEntity(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := common.RequiredStringArg(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit, err := limitArg(args, defaultSearchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	predicate, where, err := parseConditions(args, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid conditions: %v", err)), nil
	}

	if _, err := schemaInfo(ctx, sc, tableName); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search entities: %v", err)), nil
	}
	table, err := sc.Store().OpenTable(ctx, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open table: %v", err)), nil
	}

	embedder := sc.Embedder()
	if embedder == nil {
		return mcp.NewToolResultError("Embeddings are not configured: set OPENAI_API_KEY"), nil
	}
	vector, err := embedder.Embed(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to embed query: %v", err)), nil
	}

	rows, err := table.Search(ctx, vector, predicate, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search entities: %v", err)), nil
	}
	if rows == nil {
		rows = []store.Row{}
	}

	summary := fmt.Sprintf("Found %d entities in table %s using vector similarity search", len(rows), tableName)
	if where != "" {
		summary += " with pre-filter " + where
	}
	return common.JSONResult(summary+":", rows)
}

func handleCreateEntity(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := common.ObjectArg(args, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) == 0 {
		return mcp.NewToolResultError("data must contain at least one field"), nil
	}

	info, err := schemaInfo(ctx, sc, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create entity: %v", err)), nil
	}
	row, err := store.CoerceRow(info.Elements, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid entity data: %v", err)), nil
	}
	if _, err := embedRow(ctx, sc, info.Elements, data, row); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create entity: %v", err)), nil
	}

	table, err := sc.Store().OpenTable(ctx, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open table: %v", err)), nil
	}
	if _, err := table.Add(ctx, []map[string]any{row}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create entity: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Entity created successfully in table %s", tableName)), nil
}

func handleUpdateEntity(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	predicate, where, err := parseConditions(args, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid conditions: %v", err)), nil
	}
	data, err := common.ObjectArg(args, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) == 0 {
		return mcp.NewToolResultError("data must contain at least one field"), nil
	}

	info, err := schemaInfo(ctx, sc, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update entities: %v", err)), nil
	}
	values, err := store.CoerceRow(info.Elements, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid entity data: %v", err)), nil
	}
	reembedded, err := embedRow(ctx, sc, info.Elements, data, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update entities: %v", err)), nil
	}

	table, err := sc.Store().OpenTable(ctx, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open table: %v", err)), nil
	}
	n, err := table.Update(ctx, predicate, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update entities: %v", err)), nil
	}

	sc.Logger().Debug("updated entities", logging.Table(tableName), "rows", n, "reembedded", reembedded)

	return mcp.NewToolResultText(fmt.Sprintf("Updated %d entities in table %s where %s", n, tableName, where)), nil
}

func handleDeleteEntity(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	predicate, where, err := parseConditions(args, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid conditions: %v", err)), nil
	}

	table, err := sc.Store().OpenTable(ctx, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open table: %v", err)), nil
	}
	n, err := table.Delete(ctx, predicate)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete entities: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d entities from table %s where %s", n, tableName, where)), nil
}
