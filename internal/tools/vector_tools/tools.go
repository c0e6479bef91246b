package vector_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/aura-assistant/aura/internal/filter"
	"github.com/aura-assistant/aura/internal/schema"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/store"
)

const conditionsDescription = `JSON array of filter conditions that must ALL be met, e.g. [{"field":"status","operator":"=","value":"active"}]. ` +
	`Operators: =, !=, >, <, >=, <=, IN, NOT IN, LIKE. IN and NOT IN take a list value.`

// RegisterVectorTools registers all vector table tools with the MCP server
func RegisterVectorTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterSchemaTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register schema tools: %w", err)
	}
	if err := RegisterEntityTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register entity tools: %w", err)
	}
	return nil
}

// schemaInfo loads the stored description of table with a message the
// agent can act on when it is missing.
func schemaInfo(ctx context.Context, sc *server.ServerContext, table string) (*schema.Description, error) {
	d, err := sc.Store().SchemaInfo(ctx, table)
	if errors.Is(err, store.ErrSchemaNotFound) {
		return nil, fmt.Errorf("no schema found for table '%s'", table)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// parseConditions decodes the conditions argument and compiles it into a
// bound predicate plus the literal WHERE text shown to the agent.
func parseConditions(args map[string]any, required bool) (filter.Predicate, string, error) {
	conds, err := filter.DecodeConditions(args["conditions"])
	if err != nil {
		return filter.Predicate{}, "", err
	}
	if len(conds) == 0 {
		if required {
			return filter.Predicate{}, "", errors.New("conditions must contain at least one condition")
		}
		return filter.Predicate{}, "", nil
	}
	p, err := filter.Compile(conds)
	if err != nil {
		return filter.Predicate{}, "", err
	}
	where, err := filter.BuildPredicate(conds)
	if err != nil {
		return filter.Predicate{}, "", err
	}
	return p, where, nil
}

// embeddingText joins the values of the embedded fields present in data,
// in element order.
func embeddingText(elements []schema.Element, data map[string]any) string {
	var parts []string
	for _, name := range schema.EmbeddedFields(elements) {
		v, ok := data[name]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// embedRow sets the vector column of row from the embedded fields in data.
// It reports whether a vector was computed.
func embedRow(ctx context.Context, sc *server.ServerContext, elements []schema.Element, data, row map[string]any) (bool, error) {
	text := embeddingText(elements, data)
	if text == "" {
		return false, nil
	}
	embedder := sc.Embedder()
	if embedder == nil {
		return false, errors.New("embeddings are not configured: set OPENAI_API_KEY")
	}
	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return false, fmt.Errorf("failed to embed fields: %w", err)
	}
	row[schema.VectorColumn] = vec
	return true, nil
}
