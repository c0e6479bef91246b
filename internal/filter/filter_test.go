package filter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPredicate(t *testing.T) {
	tests := []struct {
		name    string
		conds   []Condition
		want    string
		wantErr string
	}{
		{
			name:  "empty",
			conds: nil,
			want:  "",
		},
		{
			name:  "single_string_equals",
			conds: []Condition{{Field: "status", Operator: Equals, Value: "active"}},
			want:  "status = 'active'",
		},
		{
			name:  "in_list",
			conds: []Condition{{Field: "status", Operator: In, Value: []string{"a", "b"}}},
			want:  "status IN ('a', 'b')",
		},
		{
			name:  "not_in_numbers",
			conds: []Condition{{Field: "age", Operator: NotIn, Value: []any{30, 40.5}}},
			want:  "age NOT IN (30, 40.5)",
		},
		{
			name: "conjunction_keeps_order",
			conds: []Condition{
				{Field: "age", Operator: GreaterThan, Value: 30},
				{Field: "vip", Operator: Equals, Value: true},
				{Field: "name", Operator: Like, Value: "Jo%"},
			},
			want: "age > 30 AND vip = TRUE AND name LIKE 'Jo%'",
		},
		{
			name:  "quote_is_doubled",
			conds: []Condition{{Field: "name", Operator: Equals, Value: "O'Brien"}},
			want:  "name = 'O''Brien'",
		},
		{
			name:  "json_number",
			conds: []Condition{{Field: "score", Operator: LessEqual, Value: json.Number("0.75")}},
			want:  "score <= 0.75",
		},
		{
			name:  "float_without_exponent",
			conds: []Condition{{Field: "salary", Operator: GreaterEqual, Value: float64(60000)}},
			want:  "salary >= 60000",
		},
		{
			name:  "timestamp",
			conds: []Condition{{Field: "created", Operator: GreaterThan, Value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}},
			want:  "created > '2024-01-02T03:04:05Z'",
		},
		{
			name:    "in_requires_list",
			conds:   []Condition{{Field: "status", Operator: In, Value: "a"}},
			wantErr: "must be a list",
		},
		{
			name:    "in_requires_items",
			conds:   []Condition{{Field: "status", Operator: In, Value: []string{}}},
			wantErr: "must not be empty",
		},
		{
			name:    "scalar_operator_rejects_list",
			conds:   []Condition{{Field: "status", Operator: Equals, Value: []string{"a"}}},
			wantErr: "does not accept a list",
		},
		{
			name:    "nil_value",
			conds:   []Condition{{Field: "status", Operator: Equals}},
			wantErr: "is required",
		},
		{
			name:    "unknown_operator",
			conds:   []Condition{{Field: "status", Operator: "~", Value: "a"}},
			wantErr: "unknown operator",
		},
		{
			name:    "like_requires_string",
			conds:   []Condition{{Field: "age", Operator: Like, Value: 3}},
			wantErr: "string pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPredicate(tt.conds)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCondition)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		p, err := Compile(nil)
		require.NoError(t, err)
		assert.True(t, p.IsEmpty())
		assert.Empty(t, p.Args)
	})

	t.Run("binds_values", func(t *testing.T) {
		p, err := Compile([]Condition{
			{Field: "status", Operator: In, Value: []any{"a", "b"}},
			{Field: "age", Operator: GreaterThan, Value: json.Number("30")},
			{Field: "score", Operator: LessThan, Value: json.Number("1.5")},
		})
		require.NoError(t, err)
		assert.Equal(t, `"status" IN (?, ?) AND "age" > ? AND "score" < ?`, p.SQL)
		assert.Equal(t, []any{"a", "b", int64(30), 1.5}, p.Args)
	})

	t.Run("injection_stays_in_args", func(t *testing.T) {
		p, err := Compile([]Condition{{Field: "name", Operator: Equals, Value: "x' OR '1'='1"}})
		require.NoError(t, err)
		assert.Equal(t, `"name" = ?`, p.SQL)
		assert.Equal(t, []any{"x' OR '1'='1"}, p.Args)
	})

	t.Run("rejects_unsafe_field", func(t *testing.T) {
		_, err := Compile([]Condition{{Field: "age; DROP TABLE x", Operator: Equals, Value: 1}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCondition)
	})
}

func TestDecodeConditions(t *testing.T) {
	t.Run("from_decoded_arguments", func(t *testing.T) {
		raw := []any{
			map[string]any{"field": "age", "operator": ">", "value": float64(30)},
			map[string]any{"field": "status", "operator": "in", "value": []any{"a", "b"}},
		}
		conds, err := DecodeConditions(raw)
		require.NoError(t, err)
		require.Len(t, conds, 2)
		assert.Equal(t, GreaterThan, conds[0].Operator)
		assert.Equal(t, json.Number("30"), conds[0].Value)
		assert.Equal(t, In, conds[1].Operator)

		where, err := BuildPredicate(conds)
		require.NoError(t, err)
		assert.Equal(t, "age > 30 AND status IN ('a', 'b')", where)
	})

	t.Run("from_json_string", func(t *testing.T) {
		conds, err := DecodeConditions(`[{"field":"name","operator":"not in","value":["x"]}]`)
		require.NoError(t, err)
		require.Len(t, conds, 1)
		assert.Equal(t, NotIn, conds[0].Operator)
	})

	t.Run("nil_and_blank", func(t *testing.T) {
		conds, err := DecodeConditions(nil)
		require.NoError(t, err)
		assert.Nil(t, conds)

		conds, err = DecodeConditions("  ")
		require.NoError(t, err)
		assert.Nil(t, conds)
	})

	tests := []struct {
		name string
		raw  any
	}{
		{name: "unknown_operator", raw: `[{"field":"a","operator":"BETWEEN","value":1}]`},
		{name: "unknown_key", raw: `[{"field":"a","operator":"=","value":1,"extra":true}]`},
		{name: "trailing_data", raw: `[{"field":"a","operator":"=","value":1}] junk`},
		{name: "in_with_scalar", raw: `[{"field":"a","operator":"IN","value":1}]`},
		{name: "not_an_array", raw: `{"field":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConditions(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCondition)
		})
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		input string
		want  Operator
	}{
		{input: "=", want: Equals},
		{input: "not  in", want: NotIn},
		{input: "like", want: Like},
		{input: "NOT_EQUALS", want: NotEquals},
		{input: "<>", want: NotEquals},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOperator(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseOperator("≈")
	assert.ErrorIs(t, err, ErrInvalidCondition)
}
