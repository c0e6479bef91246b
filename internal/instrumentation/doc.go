// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the aura MCP server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//   - store_operations_total, store_operation_duration_seconds
//   - llm_requests_total, llm_request_duration_seconds
//   - google_api_operations_total, google_api_operation_duration_seconds
//   - schema_generation_attempts
//
// Metrics are exported through Prometheus (served by the server package on a
// dedicated port), OTLP over HTTP, or stdout for debugging.
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and for calls to the
// backing services (store.<op>, llm.<op>, gmail.<op>, calendar.<op>).
//
// # Configuration
//
// DefaultConfig reads:
//   - INSTRUMENTATION_ENABLED (default true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default 0.1)
//   - OTEL_SERVICE_NAME (default aura)
//   - METRICS_DETAILED_LABELS, AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
package instrumentation
