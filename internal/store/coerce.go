package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/aura-assistant/aura/internal/schema"
)

// CoerceRow converts the loosely typed values of a decoded JSON object to
// the Go types matching each element's data type. Keys that are not elements
// are rejected, except the vector column which is passed through. Nil stays nil.
func CoerceRow(elements []schema.Element, data map[string]any) (map[string]any, error) {
	types := make(map[string]schema.DataType, len(elements))
	for _, e := range elements {
		types[e.FieldName] = e.DataType
	}

	out := make(map[string]any, len(data))
	for key, value := range data {
		if key == schema.VectorColumn {
			out[key] = value
			continue
		}
		dt, ok := types[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
		}
		v, err := CoerceValue(dt, value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

// CoerceValue converts v to the Go representation of dt.
func CoerceValue(dt schema.DataType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if n, ok := v.(json.Number); ok {
		v = n.String()
	}

	switch dt {
	case schema.String:
		return cast.ToStringE(v)
	case schema.Int32:
		i, err := toInteger(v)
		if err != nil {
			return nil, err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows int32", i)
		}
		return int32(i), nil
	case schema.Int64:
		return toInteger(v)
	case schema.Float32:
		f, err := cast.ToFloat32E(v)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %v to float32", v)
		}
		return f, nil
	case schema.Float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %v to float64", v)
		}
		return f, nil
	case schema.Bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %v to bool", v)
		}
		return b, nil
	case schema.TimestampS, schema.TimestampMS, schema.TimestampUS, schema.TimestampNS:
		return toTime(v)
	}
	return nil, &schema.UnsupportedTypeError{DataType: string(dt)}
}

// toInteger refuses fractional values instead of truncating them.
func toInteger(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("value %v is not an integer", x)
		}
	case float32:
		if float64(x) != math.Trunc(float64(x)) {
			return 0, fmt.Errorf("value %v is not an integer", x)
		}
	case string:
		s := strings.TrimSpace(x)
		if f, err := cast.ToFloat64E(s); err == nil && strings.ContainsAny(s, ".eE") {
			if f != math.Trunc(f) {
				return 0, fmt.Errorf("value %q is not an integer", x)
			}
			return int64(f), nil
		}
		v = s
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %v to an integer", v)
	}
	return i, nil
}

// minUnixDigits is the shortest digit string read as Unix seconds
// (100000000 is 1973-03-03).
const minUnixDigits = 9

// toTime accepts time.Time, RFC 3339 and common date layouts, and Unix seconds.
// A four digit string is a year.
func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case float64:
		return time.Unix(int64(x), 0).UTC(), nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && !strings.HasPrefix(s, "-") && !strings.HasPrefix(s, "+") {
			switch {
			case len(s) == 4:
				return time.Date(int(n), time.January, 1, 0, 0, 0, 0, time.UTC), nil
			case len(s) >= minUnixDigits:
				return time.Unix(n, 0).UTC(), nil
			default:
				return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp: use RFC 3339, a date, or Unix seconds", x)
			}
		}
		t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", x)
		}
		return t.UTC(), nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot convert %v to a timestamp", v)
	}
	return t.UTC(), nil
}
