package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/aura-assistant/aura/internal/instrumentation"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/store"
)

type testEnv struct {
	sc     *server.ServerContext
	reader *metric.ManualReader
	audit  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	reader := metric.NewManualReader()
	metrics, err := instrumentation.NewMetrics(metric.NewMeterProvider(metric.WithReader(reader)).Meter("test"), false)
	require.NoError(t, err)

	st, err := store.Open(ctx, store.Config{})
	require.NoError(t, err)

	audit := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(audit, nil))
	sc, err := server.NewServerContext(ctx, server.Options{
		Store:       st,
		Metrics:     metrics,
		AuditLogger: instrumentation.NewAuditLogger(logger, instrumentation.AuditLoggingConfig{Enabled: true}),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	return &testEnv{sc: sc, reader: reader, audit: audit}
}

// invocations sums mcp_tool_invocations_total per status.
func (e *testEnv) invocations(t *testing.T) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, e.reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "mcp_tool_invocations_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				status, _ := dp.Attributes.Value("status")
				out[status.AsString()] += dp.Value
			}
		}
	}
	return out
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	env := newTestEnv(t)

	called := false
	wrapped := InstrumentedToolHandler("test_tool", env.sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	})

	result, err := wrapped(context.Background(), callRequest(map[string]any{"table_name": "contacts"}))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, called)

	assert.Equal(t, map[string]int64{"success": 1}, env.invocations(t))
	assert.Contains(t, env.audit.String(), `"msg":"tool_executed"`)
	assert.Contains(t, env.audit.String(), `"table":"contacts"`)
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	env := newTestEnv(t)

	wrapped := InstrumentedToolHandler("test_tool", env.sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("table_name is required"), nil
	})

	result, err := wrapped(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	assert.Equal(t, map[string]int64{"error": 1}, env.invocations(t))
	assert.Contains(t, env.audit.String(), `"msg":"tool_failed"`)
	assert.Contains(t, env.audit.String(), "table_name is required")
}

func TestInstrumentedToolHandler_GoError(t *testing.T) {
	env := newTestEnv(t)

	handlerErr := errors.New("boom")
	wrapped := InstrumentedToolHandler("test_tool", env.sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, handlerErr
	})

	result, err := wrapped(context.Background(), callRequest(map[string]any{"account": "work@example.com"}))
	assert.ErrorIs(t, err, handlerErr)
	assert.Nil(t, result)

	assert.Equal(t, map[string]int64{"error": 1}, env.invocations(t))
	assert.NotContains(t, env.audit.String(), "work@example.com", "accounts are hashed without PII logging")
}

func TestInstrumentedToolHandler_NoInstrumentation(t *testing.T) {
	st, err := store.Open(context.Background(), store.Config{})
	require.NoError(t, err)
	sc, err := server.NewServerContext(context.Background(), server.Options{Store: st})
	require.NoError(t, err)
	defer func() { _ = sc.Shutdown() }()

	wrapped := InstrumentedToolHandler("test_tool", sc, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})
	result, err := wrapped(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
}
