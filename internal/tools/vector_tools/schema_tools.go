package vector_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/logging"
	"github.com/aura-assistant/aura/internal/schema"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/store"
	"github.com/aura-assistant/aura/internal/tools/common"
)

// RegisterSchemaTools registers table schema tools with the MCP server
func RegisterSchemaTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listSchemasTool := mcp.NewTool("list_lancedb_schemas",
		mcp.WithDescription("List all available table schemas. Returns table names, descriptions and their schema elements."),
	)
	s.AddTool(listSchemasTool, common.InstrumentedToolHandler("list_lancedb_schemas", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSchemas(ctx, request, sc)
		}))

	getElementsTool := mcp.NewTool("get_lancedb_schema_elements",
		mcp.WithDescription("Get the schema elements (columns) and description of a specific table."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the table whose schema elements to retrieve"),
		),
	)
	s.AddTool(getElementsTool, common.InstrumentedToolHandler("get_lancedb_schema_elements", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSchemaElements(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createSchemaTool := mcp.NewTool("create_lancedb_schema",
		mcp.WithDescription("Create a new table from a natural-language description of its purpose and contents. "+
			"The table name and columns are generated from the description."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Description of the table's purpose and contents"),
		),
	)
	s.AddTool(createSchemaTool, common.InstrumentedToolHandler("create_lancedb_schema", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSchema(ctx, request, sc)
		}))

	deleteSchemaTool := mcp.NewTool("delete_lancedb_schema",
		mcp.WithDescription("Delete a table and its schema. This permanently removes the table and all its data."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("The name of the table to delete"),
		),
	)
	s.AddTool(deleteSchemaTool, common.InstrumentedToolHandler("delete_lancedb_schema", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteSchema(ctx, request, sc)
		}))

	addColumnTool := mcp.NewTool("add_column_to_schema",
		mcp.WithDescription("Add a new column to an existing table. Existing rows get NULL in the new column."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the table to modify"),
		),
		mcp.WithString("column_name",
			mcp.Required(),
			mcp.Description("Name of the new column to add"),
		),
		mcp.WithString("column_type",
			mcp.Required(),
			mcp.Description("Data type of the new column: "+supportedTypes()),
		),
		mcp.WithString("column_description",
			mcp.Required(),
			mcp.Description("Description of the new column's purpose"),
		),
	)
	s.AddTool(addColumnTool, common.InstrumentedToolHandler("add_column_to_schema", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAddColumn(ctx, request, sc)
		}))

	dropColumnTool := mcp.NewTool("drop_column_from_schema",
		mcp.WithDescription("Remove a column from an existing table."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the table to modify"),
		),
		mcp.WithString("column_name",
			mcp.Required(),
			mcp.Description("Name of the column to drop"),
		),
	)
	s.AddTool(dropColumnTool, common.InstrumentedToolHandler("drop_column_from_schema", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDropColumn(ctx, request, sc)
		}))

	return nil
}

func supportedTypes() string {
	types := schema.SupportedDataTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func handleListSchemas(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	infos, err := sc.Store().ListSchemaInfo(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list schemas: %v", err)), nil
	}
	if len(infos) == 0 {
		return mcp.NewToolResultText("No schemas found."), nil
	}
	return common.JSONResult(fmt.Sprintf("Found %d schemas:", len(infos)), infos)
}

func handleGetSchemaElements(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := schemaInfo(ctx, sc, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get schema elements: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Schema elements for table '%s':\n", info.TableName)
	fmt.Fprintf(&b, "Description: %s\n", info.Description)
	b.WriteString("Elements:\n")
	for _, e := range info.Elements {
		fmt.Fprintf(&b, "- %s (%s)", e.FieldName, e.DataType)
		if e.Embedded {
			b.WriteString(" [embedded]")
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateSchema(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	description, err := common.RequiredStringArg(args, "description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	describer := sc.Describer()
	if describer == nil {
		return mcp.NewToolResultError("Schema generation is not configured: set OPENAI_API_KEY"), nil
	}

	info, err := describer.Generate(ctx, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate schema: %v", err)), nil
	}

	arrowSchema, err := schema.Materialize(info.Elements, sc.Dimension())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build schema for '%s': %v", info.TableName, err)), nil
	}

	if _, err := sc.Store().CreateTable(ctx, info.TableName, arrowSchema); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create table '%s': %v", info.TableName, err)), nil
	}
	if err := sc.Store().SaveSchemaInfo(ctx, *info); err != nil {
		if dropErr := sc.Store().DropTable(ctx, info.TableName); dropErr != nil {
			sc.Logger().Warn("failed to roll back table creation",
				logging.Table(info.TableName), logging.Err(dropErr))
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save schema info for '%s': %v", info.TableName, err)), nil
	}

	sc.Logger().Info("created table", logging.Table(info.TableName),
		"fields", len(info.Elements), "embedded", len(info.EmbeddedFields()))

	return common.JSONResult(fmt.Sprintf("Successfully created schema '%s'", info.TableName), info)
}

func handleDeleteSchema(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	infoErr := sc.Store().DeleteSchemaInfo(ctx, tableName)
	if infoErr != nil && !errors.Is(infoErr, store.ErrSchemaNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete schema info: %v", infoErr)), nil
	}
	dropErr := sc.Store().DropTable(ctx, tableName)
	if dropErr != nil && !errors.Is(dropErr, store.ErrTableNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to drop table: %v", dropErr)), nil
	}
	if infoErr != nil && dropErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Table '%s' not found", tableName)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted table %s and its schema", tableName)), nil
}

func handleAddColumn(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	columnName, err := common.RequiredStringArg(args, "column_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	columnType, err := common.RequiredStringArg(args, "column_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataType, err := schema.ParseDataType(columnType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid column_type: %v (supported: %s)", err, supportedTypes())), nil
	}

	info, err := schemaInfo(ctx, sc, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add column: %v", err)), nil
	}
	if _, exists := info.Element(columnName); exists {
		return mcp.NewToolResultError(fmt.Sprintf("Column '%s' already exists in table '%s'", columnName, tableName)), nil
	}

	table, err := sc.Store().OpenTable(ctx, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open table: %v", err)), nil
	}
	if err := table.AddColumn(ctx, columnName, dataType); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add column: %v", err)), nil
	}

	info.Elements = append(info.Elements, schema.Element{FieldName: columnName, DataType: dataType})
	if err := sc.Store().SaveSchemaInfo(ctx, *info); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Column added but schema info update failed: %v", err)), nil
	}

	sc.Logger().Debug("added column", logging.Table(tableName),
		"column", columnName, "type", string(dataType),
		"column_description", common.StringArg(args, "column_description"))

	return mcp.NewToolResultText(fmt.Sprintf("Successfully added column '%s' to table '%s'", columnName, tableName)), nil
}

func handleDropColumn(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	tableName, err := common.RequiredStringArg(args, "table_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	columnName, err := common.RequiredStringArg(args, "column_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := schemaInfo(ctx, sc, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to drop column: %v", err)), nil
	}

	kept := make([]schema.Element, 0, len(info.Elements))
	for _, e := range info.Elements {
		if e.FieldName != columnName {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(info.Elements) {
		return mcp.NewToolResultError(fmt.Sprintf("Column '%s' not found in table '%s'", columnName, tableName)), nil
	}

	table, err := sc.Store().OpenTable(ctx, tableName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to open table: %v", err)), nil
	}
	if err := table.DropColumn(ctx, columnName); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to drop column: %v", err)), nil
	}

	info.Elements = kept
	if err := sc.Store().SaveSchemaInfo(ctx, *info); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Column dropped but schema info update failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully dropped column '%s' from table '%s'", columnName, tableName)), nil
}
