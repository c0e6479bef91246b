// Package resources provides MCP resources exposing the stored table
// descriptions. Resources are read-only, so they are registered in every mode.
//
//   - aura://schemas: All table descriptions
//   - aura://schemas/{table}: The description of one table
package resources
