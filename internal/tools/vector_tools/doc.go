// Package vector_tools provides MCP tools over the vector table store.
//
// Schema tools create, inspect, alter and delete tables whose columns are
// generated by the schema describer from a natural-language description.
// Entity tools insert, fetch, search, update and delete rows. Rows are
// selected with conditions, a JSON array of {field, operator, value}
// objects that must all hold. Text in a table's embedded fields is embedded
// into the vector column on insert and on updates that change it.
//
// In read-only mode only list_lancedb_schemas, get_lancedb_schema_elements,
// get_lancedb_entity and search_lancedb_entity are registered.
package vector_tools
