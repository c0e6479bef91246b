package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	many := make([]any, MaxItems+1)
	for i := range many {
		many[i] = fmt.Sprintf("id%d", i)
	}

	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr string
	}{
		{name: "single string", input: "msg1", want: []string{"msg1"}},
		{name: "comma-separated", input: "a, b,,c", want: []string{"a", "b", "c"}},
		{name: "array", input: []any{"a", "b"}, want: []string{"a", "b"}},
		{name: "string slice", input: []string{"a", " b "}, want: []string{"a", "b"}},
		{name: "duplicates dropped", input: []any{"a", "b", "a"}, want: []string{"a", "b"}},
		{name: "nil", input: nil, wantErr: "ids is required"},
		{name: "empty string", input: "", wantErr: "ids cannot be empty"},
		{name: "only blanks", input: []any{" ", ""}, wantErr: "ids cannot be empty"},
		{name: "non-string item", input: []any{"a", 1}, wantErr: "ids[1] must be a string"},
		{name: "wrong type", input: 42, wantErr: "must be a string or array of strings"},
		{name: "too many", input: many, wantErr: "at most 100 items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDs(tt.input, "ids")
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

func TestProcess(t *testing.T) {
	var seen []string
	results := Process(context.Background(), []string{"ok1", "bad", "ok2"}, func(_ context.Context, id string) (string, error) {
		seen = append(seen, id)
		if id == "bad" {
			return "", errors.New("not found")
		}
		return "done " + id, nil
	})

	assert.Equal(t, []string{"ok1", "bad", "ok2"}, seen)
	assert.Equal(t, []Result{
		{ID: "ok1", Status: StatusSuccess, Result: "done ok1"},
		{ID: "bad", Status: StatusError, Error: "not found"},
		{ID: "ok2", Status: StatusSuccess, Result: "done ok2"},
	}, results)
}

func TestProcess_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	results := Process(ctx, []string{"a", "b", "c"}, func(_ context.Context, id string) (string, error) {
		calls++
		cancel()
		return "ok", nil
	})

	assert.Equal(t, 1, calls)
	require.Len(t, results, 3)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Equal(t, context.Canceled.Error(), results[2].Error)
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{
		NewSuccessResult("a", "ok"),
		NewErrorResult("b", errors.New("boom")),
	})

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &br))
	assert.Equal(t, 2, br.Total)
	assert.Equal(t, 1, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, "boom", br.Results[1].Error)
}
