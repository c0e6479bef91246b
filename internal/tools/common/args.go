package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
)

// StringArg returns args[key] when it is a string, or "".
func StringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// RequiredStringArg returns the trimmed string args[key] or an error naming
// the missing argument.
func RequiredStringArg(args map[string]any, key string) (string, error) {
	v := strings.TrimSpace(StringArg(args, key))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// OptionalStringArg returns a pointer to args[key] when the key is present
// as a string, so callers can tell "absent" from "set to empty".
func OptionalStringArg(args map[string]any, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// IntArg returns args[key] as an int, or def when it is absent. JSON numbers
// arrive as float64 and strings holding a number are accepted.
func IntArg(args map[string]any, key string, def int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	if f, isFloat := raw.(float64); isFloat && f != float64(int(f)) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// BoolArg returns args[key] as a bool, or def when it is absent or invalid.
func BoolArg(args map[string]any, key string, def bool) bool {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return def
	}
	return b
}

// StringListArg accepts either a JSON array of strings or a comma-separated
// string. Blank items are dropped.
func StringListArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var items []string
	switch v := raw.(type) {
	case string:
		items = strings.Split(v, ",")
	default:
		list, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be a list of strings: %w", key, err)
		}
		items = list
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// ObjectArg returns args[key] as a JSON object. A string holding a JSON
// object is decoded.
func ObjectArg(args map[string]any, key string) (map[string]any, error) {
	switch v := args[key].(type) {
	case map[string]any:
		return v, nil
	case string:
		var obj map[string]any
		dec := json.NewDecoder(strings.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object: %w", key, err)
		}
		return obj, nil
	case nil:
		return nil, fmt.Errorf("%s is required", key)
	default:
		return nil, fmt.Errorf("%s must be a JSON object, got %T", key, v)
	}
}

// JSONResult renders v as indented JSON text, prefixed by an optional
// summary line.
func JSONResult(summary string, v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	if summary == "" {
		return mcp.NewToolResultText(string(b)), nil
	}
	return mcp.NewToolResultText(summary + "\n\n" + string(b)), nil
}
