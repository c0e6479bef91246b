package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	_ "github.com/duckdb/duckdb-go/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/aura-assistant/aura/internal/ddl"
	"github.com/aura-assistant/aura/internal/instrumentation"
)

// MetadataTable holds one row per table description.
const MetadataTable = "schema_info"

var (
	ErrTableNotFound  = errors.New("table not found")
	ErrTableExists    = errors.New("table already exists")
	ErrSchemaNotFound = errors.New("schema info not found")
	ErrEmptyPredicate = errors.New("a non-empty filter is required")
	ErrNoVectorColumn = errors.New("table has no vector column")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrReservedName   = errors.New("reserved table name")
)

// Config configures the database location.
type Config struct {
	// Path is the DuckDB database file. Empty means in-memory.
	Path string
}

// DefaultConfig reads AURA_DB_PATH, defaulting to ./.aura/aura.duckdb.
func DefaultConfig() Config {
	path := os.Getenv("AURA_DB_PATH")
	if path == "" {
		path = filepath.Join(".aura", "aura.duckdb")
	}
	return Config{Path: path}
}

// Store is a DuckDB-backed collection of vector tables.
type Store struct {
	db      *sql.DB
	metrics *instrumentation.Metrics
}

// Open opens (creating if needed) the database and its metadata table.
func Open(ctx context.Context, config Config) (*Store, error) {
	if config.Path != "" {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	table_name VARCHAR PRIMARY KEY,
	description VARCHAR,
	schema_elements VARCHAR
)`, ddl.QuoteIdentifier(MetadataTable)))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", MetadataTable, err)
	}

	return &Store{db: db}, nil
}

// SetMetrics sets the metrics recorder. Nil disables recording.
func (s *Store) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// track starts a span for a store operation; the returned func ends it and
// records the metrics.
func (s *Store) track(ctx context.Context, op, table string) (context.Context, func(error)) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.ServiceStore, op,
		attribute.String(instrumentation.SpanAttrTable, table))
	start := time.Now()
	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		s.metrics.RecordStoreOperation(ctx, op, table, status, time.Since(start))
		instrumentation.EndSpan(span, err)
	}
}

func checkTableName(name string) error {
	if err := ddl.ValidateIdentifier(name); err != nil {
		return fmt.Errorf("invalid table name: %w", err)
	}
	if strings.EqualFold(name, MetadataTable) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}

// CreateTable creates a table with the columns of sch.
func (s *Store) CreateTable(ctx context.Context, name string, sch *arrow.Schema) (_ *Table, err error) {
	ctx, done := s.track(ctx, "create_table", name)
	defer func() { done(err) }()

	if err := checkTableName(name); err != nil {
		return nil, err
	}

	cols := make([]ddl.ColumnDef, 0, sch.NumFields())
	for _, f := range sch.Fields() {
		typ, err := columnType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		cols = append(cols, ddl.ColumnDef{Name: f.Name, Type: typ})
	}
	stmt, err := ddl.CreateTable(name, cols)
	if err != nil {
		return nil, err
	}

	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrTableExists, name)
	}

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to create table %q: %w", name, err)
	}
	return s.openTable(ctx, name)
}

// OpenTable returns the table called name, or ErrTableNotFound.
func (s *Store) OpenTable(ctx context.Context, name string) (_ *Table, err error) {
	ctx, done := s.track(ctx, "open_table", name)
	defer func() { done(err) }()

	if err := checkTableName(name); err != nil {
		return nil, err
	}
	return s.openTable(ctx, name)
}

func (s *Store) openTable(ctx context.Context, name string) (*Table, error) {
	t := &Table{store: s, name: name}
	if err := t.refresh(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTables returns the user tables in name order.
func (s *Store) ListTables(ctx context.Context) (_ []string, err error) {
	ctx, done := s.track(ctx, "list_tables", "")
	defer func() { done(err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'main' AND lower(table_name) <> lower(?) ORDER BY table_name`, MetadataTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DropTable removes the table called name.
func (s *Store) DropTable(ctx context.Context, name string) (err error) {
	ctx, done := s.track(ctx, "drop_table", name)
	defer func() { done(err) }()

	if err := checkTableName(name); err != nil {
		return err
	}
	exists, err := s.tableExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	stmt, err := ddl.DropTable(name)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", name, err)
	}
	return nil
}

// Table names resolve case-insensitively in DuckDB, so lookups do too.
func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM information_schema.tables
WHERE table_schema = 'main' AND lower(table_name) = lower(?)`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	return n > 0, nil
}
