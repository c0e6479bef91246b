package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrTool      = "tool"
	attrTable     = "table"
	attrKind      = "kind"
	attrModel     = "model"
	attrOutcome   = "outcome"
)

var (
	fastBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0}
	slowBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}
)

// Metrics records aura's operational metrics. The zero value (and a nil
// pointer) records nothing, so callers never need to check for it.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	storeOperationsTotal   metric.Int64Counter
	storeOperationDuration metric.Float64Histogram

	llmRequestsTotal   metric.Int64Counter
	llmRequestDuration metric.Float64Histogram

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	schemaGenerationAttempts metric.Int64Counter

	// detailedLabels adds table names to store metrics.
	detailedLabels bool
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	pairs := []struct {
		counterName, histogramName string
		help, unit                 string
		buckets                    []float64
		counter                    *metric.Int64Counter
		histogram                  *metric.Float64Histogram
	}{
		{"http_requests_total", "http_request_duration_seconds", "HTTP requests", "{request}",
			fastBuckets, &m.httpRequestsTotal, &m.httpRequestDuration},
		{"mcp_tool_invocations_total", "mcp_tool_duration_seconds", "MCP tool invocations", "{invocation}",
			slowBuckets, &m.toolInvocationsTotal, &m.toolDuration},
		{"store_operations_total", "store_operation_duration_seconds", "vector store operations", "{operation}",
			fastBuckets, &m.storeOperationsTotal, &m.storeOperationDuration},
		{"llm_requests_total", "llm_request_duration_seconds", "LLM completion and embedding requests", "{request}",
			slowBuckets, &m.llmRequestsTotal, &m.llmRequestDuration},
		{"google_api_operations_total", "google_api_operation_duration_seconds", "Google API operations", "{operation}",
			slowBuckets, &m.googleAPIOperationsTotal, &m.googleAPIOperationDuration},
	}

	var err error
	for _, p := range pairs {
		*p.counter, err = meter.Int64Counter(p.counterName,
			metric.WithDescription("Total number of "+p.help),
			metric.WithUnit(p.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", p.counterName, err)
		}
		*p.histogram, err = meter.Float64Histogram(p.histogramName,
			metric.WithDescription("Duration of "+p.help+" in seconds"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(p.buckets...),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s histogram: %w", p.histogramName, err)
		}
	}

	m.schemaGenerationAttempts, err = meter.Int64Counter("schema_generation_attempts",
		metric.WithDescription("Schema generation attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_generation_attempts counter: %w", err)
	}

	return m, nil
}

func record(ctx context.Context, c metric.Int64Counter, h metric.Float64Histogram, d time.Duration, attrs ...attribute.KeyValue) {
	if c == nil || h == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	c.Add(ctx, 1, opt)
	h.Record(ctx, d.Seconds(), opt)
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	record(ctx, m.httpRequestsTotal, m.httpRequestDuration, duration,
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
}

// RecordToolInvocation records one MCP tool call with its status.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil {
		return
	}
	record(ctx, m.toolInvocationsTotal, m.toolDuration, duration,
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
}

// RecordStoreOperation records a store operation (create_table, add, search, ...).
// The table label is only attached when detailed labels are enabled.
func (m *Metrics) RecordStoreOperation(ctx context.Context, operation, table, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && table != "" {
		attrs = append(attrs, attribute.String(attrTable, table))
	}
	record(ctx, m.storeOperationsTotal, m.storeOperationDuration, duration, attrs...)
}

// RecordLLMRequest records a completion or embedding call. kind is
// "complete" or "embed".
func (m *Metrics) RecordLLMRequest(ctx context.Context, kind, model, status string, duration time.Duration) {
	if m == nil {
		return
	}
	record(ctx, m.llmRequestsTotal, m.llmRequestDuration, duration,
		attribute.String(attrKind, kind),
		attribute.String(attrModel, model),
		attribute.String(attrStatus, status),
	)
}

// RecordGoogleAPIOperation records a Gmail or Calendar API call.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	record(ctx, m.googleAPIOperationsTotal, m.googleAPIOperationDuration, duration,
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
}

// RecordSchemaAttempt counts one validated schema generation attempt.
// outcome is "valid" or "invalid".
func (m *Metrics) RecordSchemaAttempt(ctx context.Context, outcome string) {
	if m == nil || m.schemaGenerationAttempts == nil {
		return
	}
	m.schemaGenerationAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}
