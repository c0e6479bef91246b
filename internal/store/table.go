package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/aura-assistant/aura/internal/ddl"
	"github.com/aura-assistant/aura/internal/filter"
	"github.com/aura-assistant/aura/internal/schema"
)

// DistanceColumn holds the cosine distance in Search results.
const DistanceColumn = "_distance"

// Row is one table row keyed by column name. Query and Search omit the vector column.
type Row map[string]any

// Table is a handle on one vector table. Its schema is a snapshot taken when
// the handle was opened or last altered through it.
type Table struct {
	store  *Store
	name   string
	schema *arrow.Schema
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Schema returns the table layout as an Arrow schema.
func (t *Table) Schema() *arrow.Schema {
	return t.schema
}

func (t *Table) refresh(ctx context.Context) error {
	rows, err := t.store.db.QueryContext(ctx, `SELECT column_name, data_type FROM information_schema.columns
WHERE table_schema = 'main' AND lower(table_name) = lower(?) ORDER BY ordinal_position`, t.name)
	if err != nil {
		return fmt.Errorf("failed to read columns of %q: %w", t.name, err)
	}
	defer rows.Close()

	var fields []arrow.Field
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return err
		}
		at, err := arrowType(typ)
		if err != nil {
			return fmt.Errorf("column %q of %q: %w", name, t.name, err)
		}
		fields = append(fields, arrow.Field{Name: name, Type: at, Nullable: true})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: %q", ErrTableNotFound, t.name)
	}
	t.schema = arrow.NewSchema(fields, nil)
	return nil
}

func (t *Table) field(name string) (arrow.Field, bool) {
	idx := t.schema.FieldIndices(name)
	if len(idx) == 0 {
		return arrow.Field{}, false
	}
	return t.schema.Field(idx[0]), true
}

// vectorSize returns the width of the vector column, or 0 when there is none.
func (t *Table) vectorSize() int {
	f, ok := t.field(schema.VectorColumn)
	if !ok {
		return 0
	}
	if list, ok := f.Type.(*arrow.FixedSizeListType); ok {
		return int(list.Len())
	}
	return 0
}

// placeholder returns the bind expression and value for column.
func (t *Table) placeholder(column string, value any) (string, any, error) {
	f, ok := t.field(column)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, column, t.name)
	}
	if column != schema.VectorColumn || value == nil {
		return "?", value, nil
	}
	typ, err := columnType(f.Type)
	if err != nil {
		return "", nil, err
	}
	vec, err := toVector(value, t.vectorSize())
	if err != nil {
		return "", nil, err
	}
	return "CAST(? AS " + typ + ")", vectorLiteral(vec), nil
}

// Add inserts rows. Columns missing from a row are NULL.
func (t *Table) Add(ctx context.Context, rows []map[string]any) (n int, err error) {
	ctx, done := t.store.track(ctx, "add", t.name)
	defer func() { done(err) }()

	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, row := range rows {
		cols := sortedKeys(row)
		if len(cols) == 0 {
			continue
		}
		names := make([]string, len(cols))
		marks := make([]string, len(cols))
		args := make([]any, len(cols))
		for i, col := range cols {
			mark, arg, err := t.placeholder(col, row[col])
			if err != nil {
				return 0, err
			}
			names[i], marks[i], args[i] = ddl.QuoteIdentifier(col), mark, arg
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			ddl.QuoteIdentifier(t.name), strings.Join(names, ", "), strings.Join(marks, ", "))
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return 0, fmt.Errorf("failed to insert into %q: %w", t.name, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes the rows matching p and returns how many were removed.
func (t *Table) Delete(ctx context.Context, p filter.Predicate) (n int64, err error) {
	ctx, done := t.store.track(ctx, "delete", t.name)
	defer func() { done(err) }()

	if p.IsEmpty() {
		return 0, ErrEmptyPredicate
	}
	res, err := t.store.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s", ddl.QuoteIdentifier(t.name), p.SQL), p.Args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %q: %w", t.name, err)
	}
	return res.RowsAffected()
}

// Update sets values on the rows matching p and returns how many changed.
func (t *Table) Update(ctx context.Context, p filter.Predicate, values map[string]any) (n int64, err error) {
	ctx, done := t.store.track(ctx, "update", t.name)
	defer func() { done(err) }()

	if p.IsEmpty() {
		return 0, ErrEmptyPredicate
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("no values to update")
	}

	cols := sortedKeys(values)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(p.Args))
	for i, col := range cols {
		mark, arg, err := t.placeholder(col, values[col])
		if err != nil {
			return 0, err
		}
		sets[i] = ddl.QuoteIdentifier(col) + " = " + mark
		args = append(args, arg)
	}
	args = append(args, p.Args...)

	res, err := t.store.db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		ddl.QuoteIdentifier(t.name), strings.Join(sets, ", "), p.SQL), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %q: %w", t.name, err)
	}
	return res.RowsAffected()
}

// Query returns rows matching p. limit <= 0 means no limit.
func (t *Table) Query(ctx context.Context, p filter.Predicate, limit int) (_ []Row, err error) {
	ctx, done := t.store.track(ctx, "query", t.name)
	defer func() { done(err) }()

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", t.selectList(), ddl.QuoteIdentifier(t.name))
	args := append([]any(nil), p.Args...)
	if !p.IsEmpty() {
		b.WriteString(" WHERE " + p.SQL)
	}
	if limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	return t.collect(ctx, b.String(), args)
}

// Search returns the limit rows nearest to vector by cosine distance, after
// applying the prefilter p. Each row carries DistanceColumn.
func (t *Table) Search(ctx context.Context, vector []float32, p filter.Predicate, limit int) (_ []Row, err error) {
	ctx, done := t.store.track(ctx, "search", t.name)
	defer func() { done(err) }()

	size := t.vectorSize()
	if size == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoVectorColumn, t.name)
	}
	if len(vector) != size {
		return nil, fmt.Errorf("query vector has %d dimensions, table %q expects %d", len(vector), t.name, size)
	}
	if limit <= 0 {
		limit = 10
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s, array_cosine_distance(%s, CAST(? AS FLOAT[%d])) AS %s FROM %s",
		t.selectList(), ddl.QuoteIdentifier(schema.VectorColumn), size,
		ddl.QuoteIdentifier(DistanceColumn), ddl.QuoteIdentifier(t.name))
	args := []any{vectorLiteral(vector)}
	if !p.IsEmpty() {
		b.WriteString(" WHERE " + p.SQL)
		args = append(args, p.Args...)
	}
	fmt.Fprintf(&b, " ORDER BY %s ASC NULLS LAST LIMIT ?", ddl.QuoteIdentifier(DistanceColumn))
	args = append(args, limit)

	return t.collect(ctx, b.String(), args)
}

// AddColumn adds a nullable column of type dt. Existing rows read NULL.
func (t *Table) AddColumn(ctx context.Context, name string, dt schema.DataType) (err error) {
	ctx, done := t.store.track(ctx, "add_column", t.name)
	defer func() { done(err) }()

	if name == schema.VectorColumn {
		return fmt.Errorf("column name %q is reserved", name)
	}
	if _, exists := t.field(name); exists {
		return fmt.Errorf("column %q already exists in table %q", name, t.name)
	}
	at, err := schema.ArrowType(dt)
	if err != nil {
		return err
	}
	typ, err := columnType(at)
	if err != nil {
		return err
	}
	stmt, err := ddl.AddColumn(t.name, ddl.ColumnDef{Name: name, Type: typ})
	if err != nil {
		return err
	}
	if _, err := t.store.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to add column %q to %q: %w", name, t.name, err)
	}
	return t.refresh(ctx)
}

// DropColumn removes a column. The vector column cannot be dropped.
func (t *Table) DropColumn(ctx context.Context, name string) (err error) {
	ctx, done := t.store.track(ctx, "drop_column", t.name)
	defer func() { done(err) }()

	if name == schema.VectorColumn {
		return fmt.Errorf("column %q cannot be dropped", name)
	}
	if _, exists := t.field(name); !exists {
		return fmt.Errorf("%w: column %q not found in table %q", ErrUnknownColumn, name, t.name)
	}
	stmt, err := ddl.DropColumn(t.name, name)
	if err != nil {
		return err
	}
	if _, err := t.store.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop column %q from %q: %w", name, t.name, err)
	}
	return t.refresh(ctx)
}

// Count returns the number of rows in the table.
func (t *Table) Count(ctx context.Context) (int64, error) {
	var n int64
	err := t.store.db.QueryRowContext(ctx, "SELECT count(*) FROM "+ddl.QuoteIdentifier(t.name)).Scan(&n)
	return n, err
}

func (t *Table) selectList() string {
	cols := make([]string, 0, t.schema.NumFields())
	for _, f := range t.schema.Fields() {
		if f.Name == schema.VectorColumn {
			continue
		}
		cols = append(cols, ddl.QuoteIdentifier(f.Name))
	}
	if len(cols) == 0 {
		return "NULL AS " + ddl.QuoteIdentifier("_empty")
	}
	return strings.Join(cols, ", ")
}

func (t *Table) collect(ctx context.Context, query string, args []any) ([]Row, error) {
	rows, err := t.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", t.name, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toVector converts the supported vector representations to []float32 of length size.
func toVector(v any, size int) ([]float32, error) {
	var vec []float32
	switch x := v.(type) {
	case []float32:
		vec = x
	case []float64:
		vec = make([]float32, len(x))
		for i, f := range x {
			vec[i] = float32(f)
		}
	case []any:
		vec = make([]float32, len(x))
		for i, item := range x {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("vector element %d is %T, not a number", i, item)
			}
			vec[i] = float32(f)
		}
	default:
		return nil, fmt.Errorf("unsupported vector value %T", v)
	}
	if len(vec) != size {
		return nil, fmt.Errorf("vector has %d dimensions, expected %d", len(vec), size)
	}
	return vec, nil
}

// vectorLiteral renders vec in DuckDB list text form, castable to FLOAT[n].
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.Grow(len(vec) * 10)
	b.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
