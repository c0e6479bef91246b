// Package cmd implements the command-line interface for aura.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide tools for AI assistants
//   - describe: Turn a natural language description into a table schema
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
package cmd
