// Package logging provides structured logging helpers for aura.
//
// All packages log through log/slog. This package fixes the attribute names
// (operation, tool, table, status, error, ...) so log lines from the tool
// layer, the store and the schema describer can be correlated.
//
//	logger := logging.WithTool(slog.Default(), "create_lancedb_schema")
//	logger.Info("schema created", logging.Table("contacts"), logging.Status(logging.StatusSuccess))
//
// Google account addresses are never logged in clear; use Account, which
// hashes the local part.
package logging
