package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-assistant/aura/internal/schema"
)

func TestCoerceValue(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name    string
		dt      schema.DataType
		in      any
		want    any
		wantErr string
	}{
		{name: "string_passthrough", dt: schema.String, in: "x", want: "x"},
		{name: "number_to_string", dt: schema.String, in: float64(42), want: "42"},
		{name: "int32_from_float", dt: schema.Int32, in: float64(30), want: int32(30)},
		{name: "int32_from_json_number", dt: schema.Int32, in: json.Number("7"), want: int32(7)},
		{name: "int32_from_string", dt: schema.Int32, in: " 12 ", want: int32(12)},
		{name: "int32_overflow", dt: schema.Int32, in: float64(1 << 40), wantErr: "overflows int32"},
		{name: "int64_fraction", dt: schema.Int64, in: 1.5, wantErr: "not an integer"},
		{name: "int64_from_decimal_string", dt: schema.Int64, in: "3.0", want: int64(3)},
		{name: "int64_garbage", dt: schema.Int64, in: "many", wantErr: "cannot convert"},
		{name: "float32", dt: schema.Float32, in: "1.25", want: float32(1.25)},
		{name: "float64", dt: schema.Float64, in: float64(60000), want: float64(60000)},
		{name: "bool_from_string", dt: schema.Bool, in: "true", want: true},
		{name: "bool_garbage", dt: schema.Bool, in: "perhaps", wantErr: "cannot convert"},
		{name: "timestamp_rfc3339", dt: schema.TimestampS, in: "2024-05-06T07:08:09Z", want: ts},
		{name: "timestamp_date_only", dt: schema.TimestampMS, in: "2024-05-06", want: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
		{name: "timestamp_unix", dt: schema.TimestampUS, in: float64(ts.Unix()), want: ts},
		{name: "timestamp_unix_string", dt: schema.TimestampNS, in: json.Number("1714979289"), want: ts},
		{name: "timestamp_year_string", dt: schema.TimestampS, in: "2024", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "timestamp_unix_digits", dt: schema.TimestampS, in: "1714979289", want: ts},
		{name: "timestamp_short_digits", dt: schema.TimestampS, in: "123", wantErr: "cannot parse"},
		{name: "timestamp_garbage", dt: schema.TimestampS, in: "yesterday-ish", wantErr: "cannot parse"},
		{name: "nil", dt: schema.Int32, in: nil, want: nil},
		{name: "unsupported", dt: "decimal", in: "1", wantErr: "unsupported data type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceValue(tt.dt, tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if want, ok := tt.want.(time.Time); ok {
				assert.True(t, want.Equal(got.(time.Time)), "got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceRow(t *testing.T) {
	row, err := CoerceRow(contactElements, map[string]any{
		"name":   "Ada",
		"age":    float64(36),
		"vector": []float32{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", row["name"])
	assert.Equal(t, int32(36), row["age"])
	assert.Equal(t, []float32{1, 2}, row["vector"])

	_, err = CoerceRow(contactElements, map[string]any{"email": "x"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = CoerceRow(contactElements, map[string]any{"age": "old"})
	assert.ErrorContains(t, err, `field "age"`)
}
