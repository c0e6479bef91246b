// Package ddl builds the DuckDB DDL statements used by the vector table store.
//
// Every builder validates its identifiers and returns an error instead of
// emitting a statement with an unsafe name.
package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// columnTypeRe matches the DuckDB column types the store emits:
// plain type names (VARCHAR, TIMESTAMP_MS, ...) and fixed-size arrays (FLOAT[1536]).
var columnTypeRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*(?:\[\d+\])?$`)

// ColumnDef describes a column for CREATE TABLE and ALTER TABLE ADD COLUMN.
type ColumnDef struct {
	Name string
	Type string
}

// ValidateColumnType checks that typeName is one of the simple type forms the store uses.
func ValidateColumnType(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("column type is required")
	}
	if !columnTypeRe.MatchString(typeName) {
		return fmt.Errorf("column type %q is not a recognized type pattern", typeName)
	}
	return nil
}

// CreateTable returns: CREATE TABLE "<table>" ("<col1>" TYPE1, "<col2>" TYPE2, ...).
func CreateTable(table string, columns []ColumnDef) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}

	colDefs := make([]string, 0, len(columns))
	for _, c := range columns {
		def, err := columnDef(c)
		if err != nil {
			return "", err
		}
		colDefs = append(colDefs, def)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(table), strings.Join(colDefs, ", ")), nil
}

// DropTable returns: DROP TABLE "<table>".
func DropTable(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return fmt.Sprintf("DROP TABLE %s", QuoteIdentifier(table)), nil
}

// AddColumn returns: ALTER TABLE "<table>" ADD COLUMN "<col>" TYPE.
// Existing rows get NULL for the new column.
func AddColumn(table string, column ColumnDef) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	def, err := columnDef(column)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", QuoteIdentifier(table), def), nil
}

// DropColumn returns: ALTER TABLE "<table>" DROP COLUMN "<col>".
func DropColumn(table, column string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateIdentifier(column); err != nil {
		return "", fmt.Errorf("invalid column name: %w", err)
	}
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", QuoteIdentifier(table), QuoteIdentifier(column)), nil
}

func columnDef(c ColumnDef) (string, error) {
	if err := ValidateIdentifier(c.Name); err != nil {
		return "", fmt.Errorf("invalid column name %q: %w", c.Name, err)
	}
	if err := ValidateColumnType(c.Type); err != nil {
		return "", fmt.Errorf("invalid column type for %q: %w", c.Name, err)
	}
	return QuoteIdentifier(c.Name) + " " + c.Type, nil
}
