// Package server provides the MCP server context and the HTTP servers of aura.
//
// # Key Components
//
// ServerContext carries the dependencies shared by every tool handler: the
// DuckDB store, the schema describer, the embedding client, and Google API
// clients that are created lazily per account and cached.
//
// HTTPServer serves the MCP streamable-http transport on /mcp next to the
// /healthz and /readyz probes, recording every request as an HTTP metric.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, isolated
// from MCP traffic.
package server
