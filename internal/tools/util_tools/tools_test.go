package util_tools

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/store"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{})
	require.NoError(t, err)
	sc, err := server.NewServerContext(ctx, server.Options{Store: st})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterUtilTools(t *testing.T) {
	sc := newTestServerContext(t)
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterUtilTools(s, sc))

	tools := s.ListTools()
	assert.Len(t, tools, 1)
	assert.Contains(t, tools, "get_current_time")
}

func TestHandleGetCurrentTime(t *testing.T) {
	fixed := time.Date(2025, 1, 15, 13, 30, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	tests := []struct {
		name    string
		env     string
		args    map[string]any
		want    string
		wantErr string
	}{
		{
			name: "default UTC",
			args: map[string]any{},
			want: "Current time in UTC: 2025-01-15T13:30:00Z (Wednesday)",
		},
		{
			name: "environment zone",
			env:  "Asia/Tokyo",
			args: map[string]any{},
			want: "Current time in Asia/Tokyo: 2025-01-15T22:30:00+09:00 (Wednesday)",
		},
		{
			name: "explicit zone wins",
			env:  "Asia/Tokyo",
			args: map[string]any{"timezone": "America/Los_Angeles"},
			want: "Current time in America/Los_Angeles: 2025-01-15T05:30:00-08:00 (Wednesday)",
		},
		{
			name:    "unknown zone",
			args:    map[string]any{"timezone": "Nowhere/Special"},
			wantErr: `invalid time zone "Nowhere/Special"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AURA_TIMEZONE", tt.env)
			sc := newTestServerContext(t)

			req := mcp.CallToolRequest{}
			req.Params.Arguments = tt.args
			result, err := handleGetCurrentTime(context.Background(), req, sc)
			require.NoError(t, err)
			text := result.Content[0].(mcp.TextContent).Text

			if tt.wantErr != "" {
				assert.True(t, result.IsError)
				assert.Contains(t, text, tt.wantErr)
				return
			}
			assert.False(t, result.IsError)
			assert.Equal(t, tt.want, text)
		})
	}
}
