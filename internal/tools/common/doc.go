// Package common provides shared utilities for MCP tool implementations:
// argument extraction, JSON results and the instrumentation wrapper every
// tool handler is registered through.
package common
