package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aura-assistant/aura/internal/ddl"
	"github.com/aura-assistant/aura/internal/schema"
)

// SaveSchemaInfo inserts or replaces the description of d.TableName.
func (s *Store) SaveSchemaInfo(ctx context.Context, d schema.Description) (err error) {
	ctx, done := s.track(ctx, "save_schema_info", d.TableName)
	defer func() { done(err) }()

	if err := ddl.ValidateIdentifier(d.TableName); err != nil {
		return fmt.Errorf("invalid table name: %w", err)
	}
	elements, err := json.Marshal(d.Elements)
	if err != nil {
		return fmt.Errorf("failed to encode schema elements: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT OR REPLACE INTO %s (table_name, description, schema_elements) VALUES (?, ?, ?)",
			ddl.QuoteIdentifier(MetadataTable)),
		d.TableName, d.Description, string(elements))
	if err != nil {
		return fmt.Errorf("failed to save schema info for %q: %w", d.TableName, err)
	}
	return nil
}

// SchemaInfo returns the stored description of table, or ErrSchemaNotFound.
func (s *Store) SchemaInfo(ctx context.Context, table string) (_ *schema.Description, err error) {
	ctx, done := s.track(ctx, "schema_info", table)
	defer func() { done(err) }()

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT table_name, description, schema_elements FROM %s WHERE lower(table_name) = lower(?)",
			ddl.QuoteIdentifier(MetadataTable)), table)
	d, err := scanDescription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSchemaNotFound, table)
	}
	return d, err
}

// ListSchemaInfo returns every stored description ordered by table name.
func (s *Store) ListSchemaInfo(ctx context.Context) (_ []schema.Description, err error) {
	ctx, done := s.track(ctx, "list_schema_info", "")
	defer func() { done(err) }()

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT table_name, description, schema_elements FROM %s ORDER BY table_name",
			ddl.QuoteIdentifier(MetadataTable)))
	if err != nil {
		return nil, fmt.Errorf("failed to list schema info: %w", err)
	}
	defer rows.Close()

	var out []schema.Description
	for rows.Next() {
		d, err := scanDescription(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DeleteSchemaInfo removes the description of table. It reports
// ErrSchemaNotFound when there was none.
func (s *Store) DeleteSchemaInfo(ctx context.Context, table string) (err error) {
	ctx, done := s.track(ctx, "delete_schema_info", table)
	defer func() { done(err) }()

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE lower(table_name) = lower(?)", ddl.QuoteIdentifier(MetadataTable)), table)
	if err != nil {
		return fmt.Errorf("failed to delete schema info for %q: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrSchemaNotFound, table)
	}
	return nil
}

func scanDescription(scan func(dest ...any) error) (*schema.Description, error) {
	var (
		d           schema.Description
		description sql.NullString
		elements    sql.NullString
	)
	if err := scan(&d.TableName, &description, &elements); err != nil {
		return nil, err
	}
	d.Description = description.String
	if elements.Valid && elements.String != "" {
		if err := json.Unmarshal([]byte(elements.String), &d.Elements); err != nil {
			return nil, fmt.Errorf("corrupt schema elements for %q: %w", d.TableName, err)
		}
	}
	return &d, nil
}
