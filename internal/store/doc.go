// Package store keeps vector tables in an embedded DuckDB database.
//
// Table layouts are described with Arrow schemas (see package schema) and
// mapped onto DuckDB column types; the vector column becomes a fixed-size
// FLOAT array searched with array_cosine_distance. Table descriptions
// produced by the schema describer are kept next to the data in the
// schema_info table.
//
// All row filters are compiled filter.Predicate values, so user input only
// reaches DuckDB as bound parameters.
package store
