package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTable(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns []ColumnDef
		want    string
		wantErr string
	}{
		{
			name:    "single_column",
			table:   "contacts",
			columns: []ColumnDef{{Name: "name", Type: "VARCHAR"}},
			want:    `CREATE TABLE "contacts" ("name" VARCHAR)`,
		},
		{
			name:  "with_vector",
			table: "contacts",
			columns: []ColumnDef{
				{Name: "name", Type: "VARCHAR"},
				{Name: "age", Type: "INTEGER"},
				{Name: "vector", Type: "FLOAT[1536]"},
			},
			want: `CREATE TABLE "contacts" ("name" VARCHAR, "age" INTEGER, "vector" FLOAT[1536])`,
		},
		{
			name:    "empty_table",
			columns: []ColumnDef{{Name: "name", Type: "VARCHAR"}},
			wantErr: "invalid table name",
		},
		{
			name:    "no_columns",
			table:   "contacts",
			wantErr: "at least one column is required",
		},
		{
			name:    "invalid_column_name",
			table:   "contacts",
			columns: []ColumnDef{{Name: "first-name", Type: "VARCHAR"}},
			wantErr: "invalid column name",
		},
		{
			name:    "sql_injection_in_type",
			table:   "contacts",
			columns: []ColumnDef{{Name: "id", Type: "INTEGER); DROP TABLE foo; --"}},
			wantErr: "invalid column type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CreateTable(tt.table, tt.columns)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlterStatements(t *testing.T) {
	stmt, err := AddColumn("contacts", ColumnDef{Name: "birthday", Type: "TIMESTAMP_S"})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "contacts" ADD COLUMN "birthday" TIMESTAMP_S`, stmt)

	stmt, err = DropColumn("contacts", "birthday")
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "contacts" DROP COLUMN "birthday"`, stmt)

	stmt, err = DropTable("contacts")
	require.NoError(t, err)
	assert.Equal(t, `DROP TABLE "contacts"`, stmt)

	_, err = DropColumn("contacts", "x;y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid column name")

	_, err = AddColumn("contacts", ColumnDef{Name: "note", Type: "varchar"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid column type")
}
