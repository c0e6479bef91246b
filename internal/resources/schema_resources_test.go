package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-assistant/aura/internal/schema"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/store"
)

func newTestServerContext(t *testing.T, descriptions ...schema.Description) *server.ServerContext {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{})
	require.NoError(t, err)
	for _, d := range descriptions {
		require.NoError(t, st.SaveSchemaInfo(ctx, d))
	}
	sc, err := server.NewServerContext(ctx, server.Options{Store: st})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func decodeContents(t *testing.T, contents []mcp.ResourceContents, v any) {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

var books = schema.Description{
	TableName:   "books",
	Description: "Books I read",
	Elements: []schema.Element{
		{FieldName: "title", DataType: schema.String, Embedded: true},
		{FieldName: "pages", DataType: schema.Int32},
	},
}

func TestHandleListSchemas(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		sc := newTestServerContext(t)
		contents, err := handleListSchemas(context.Background(), readRequest(SchemasURI), sc)
		require.NoError(t, err)

		var got []schema.Description
		decodeContents(t, contents, &got)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("stored tables", func(t *testing.T) {
		sc := newTestServerContext(t, books)
		contents, err := handleListSchemas(context.Background(), readRequest(SchemasURI), sc)
		require.NoError(t, err)

		var got []schema.Description
		decodeContents(t, contents, &got)
		assert.Equal(t, []schema.Description{books}, got)
	})
}

func TestHandleGetSchema(t *testing.T) {
	sc := newTestServerContext(t, books)

	contents, err := handleGetSchema(context.Background(), readRequest("aura://schemas/books"), sc)
	require.NoError(t, err)
	var got schema.Description
	decodeContents(t, contents, &got)
	assert.Equal(t, books, got)

	_, err = handleGetSchema(context.Background(), readRequest("aura://schemas/movies"), sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrSchemaNotFound)
}

func TestTableFromURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{uri: "aura://schemas/books", want: "books"},
		{uri: "aura://schemas/", wantErr: true},
		{uri: "aura://schemas", wantErr: true},
		{uri: "aura://schemas/a/b", wantErr: true},
		{uri: "user://profile", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := tableFromURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
