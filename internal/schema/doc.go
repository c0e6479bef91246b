// Package schema describes vector tables and generates those descriptions
// from natural language.
//
// A Description names a table and lists its Elements. Each element has a
// field name, one of the SupportedDataTypes, and an Embedded flag. Embedded
// fields are concatenated and turned into the table's single vector column.
//
// Materialize converts elements into an Arrow schema. The Describer asks a
// Completer (an LLM) for a Description, validates the reply and retries with
// the failure appended to the conversation until it succeeds or runs out of
// attempts.
package schema
