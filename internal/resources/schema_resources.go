package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/schema"
	"github.com/aura-assistant/aura/internal/server"
)

const (
	// SchemasURI lists every table description.
	SchemasURI = "aura://schemas"

	// SchemaURITemplate addresses a single table description.
	SchemaURITemplate = SchemasURI + "/{table}"
)

// RegisterSchemaResources registers the table description resources
func RegisterSchemaResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	schemasResource := mcp.NewResource(
		SchemasURI,
		"Table Schemas",
		mcp.WithResourceDescription("Descriptions and fields of all tables created with create_lancedb_schema"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(schemasResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleListSchemas(ctx, request, sc)
	})

	schemaTemplate := mcp.NewResourceTemplate(
		SchemaURITemplate,
		"Table Schema",
		mcp.WithTemplateDescription("Description and fields of a single table"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(schemaTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleGetSchema(ctx, request, sc)
	})

	return nil
}

// tableFromURI extracts the table name of an aura://schemas/{table} URI.
func tableFromURI(uri string) (string, error) {
	table, ok := strings.CutPrefix(uri, SchemasURI+"/")
	if !ok || table == "" || strings.Contains(table, "/") {
		return "", fmt.Errorf("invalid schema resource URI: %s", uri)
	}
	return table, nil
}

func handleListSchemas(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	descriptions, err := sc.Store().ListSchemaInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	if descriptions == nil {
		descriptions = []schema.Description{}
	}
	return jsonContents(request.Params.URI, descriptions)
}

func handleGetSchema(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	table, err := tableFromURI(request.Params.URI)
	if err != nil {
		return nil, err
	}

	desc, err := sc.Store().SchemaInfo(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema for table %s: %w", table, err)
	}
	return jsonContents(request.Params.URI, desc)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
