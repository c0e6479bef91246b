package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aura-assistant/aura/internal/ddl"
)

// ErrInvalidCondition is returned for conditions that cannot be rendered.
var ErrInvalidCondition = errors.New("invalid filter condition")

// Condition is a single `field operator value` comparison.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Predicate is a compiled WHERE clause body with positional arguments.
type Predicate struct {
	SQL  string
	Args []any
}

// IsEmpty reports whether p matches every row.
func (p Predicate) IsEmpty() bool {
	return p.SQL == ""
}

// Validate checks the operator/value pairing of c.
func (c Condition) Validate() error {
	if strings.TrimSpace(c.Field) == "" {
		return fmt.Errorf("%w: field is required", ErrInvalidCondition)
	}
	if !c.Operator.Valid() {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, c.Operator)
	}

	items, isList := listItems(c.Value)
	if c.Operator.TakesList() {
		if !isList {
			return fmt.Errorf("%w: value for %s on %q must be a list", ErrInvalidCondition, c.Operator, c.Field)
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: value for %s on %q must not be empty", ErrInvalidCondition, c.Operator, c.Field)
		}
		for _, item := range items {
			if err := checkScalar(c.Field, item); err != nil {
				return err
			}
		}
		return nil
	}

	if isList {
		return fmt.Errorf("%w: operator %s on %q does not accept a list", ErrInvalidCondition, c.Operator, c.Field)
	}
	if err := checkScalar(c.Field, c.Value); err != nil {
		return err
	}
	if c.Operator == Like {
		if _, ok := c.Value.(string); !ok {
			return fmt.Errorf("%w: LIKE on %q requires a string pattern", ErrInvalidCondition, c.Field)
		}
	}
	return nil
}

// BuildPredicate renders conds as a literal SQL conjunction, for example
// `status IN ('a', 'b') AND age > 30`. An empty slice yields "".
// Field names are emitted as given.
func BuildPredicate(conds []Condition) (string, error) {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		if err := c.Validate(); err != nil {
			return "", err
		}

		var rendered string
		if c.Operator.TakesList() {
			items, _ := listItems(c.Value)
			lits := make([]string, len(items))
			for i, item := range items {
				lits[i] = literal(item)
			}
			rendered = "(" + strings.Join(lits, ", ") + ")"
		} else {
			rendered = literal(c.Value)
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", c.Field, c.Operator, rendered))
	}
	return strings.Join(parts, " AND "), nil
}

// Compile renders conds as a parameterized predicate. Field names must be
// plain identifiers and are double-quoted. An empty slice yields the zero Predicate.
func Compile(conds []Condition) (Predicate, error) {
	var (
		parts []string
		args  []any
	)
	for _, c := range conds {
		if err := c.Validate(); err != nil {
			return Predicate{}, err
		}
		if err := ddl.ValidateIdentifier(c.Field); err != nil {
			return Predicate{}, fmt.Errorf("%w: field: %v", ErrInvalidCondition, err)
		}

		column := ddl.QuoteIdentifier(c.Field)
		if c.Operator.TakesList() {
			items, _ := listItems(c.Value)
			marks := make([]string, len(items))
			for i, item := range items {
				marks[i] = "?"
				args = append(args, bindValue(item))
			}
			parts = append(parts, fmt.Sprintf("%s %s (%s)", column, c.Operator, strings.Join(marks, ", ")))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", column, c.Operator))
		args = append(args, bindValue(c.Value))
	}
	if len(parts) == 0 {
		return Predicate{}, nil
	}
	return Predicate{SQL: strings.Join(parts, " AND "), Args: args}, nil
}

// DecodeConditions converts a tool argument into conditions. raw may be the
// decoded JSON array, a JSON string holding the array, or nil. Unknown keys
// are rejected and numbers keep their exact textual form.
func DecodeConditions(raw any) ([]Condition, error) {
	if raw == nil {
		return nil, nil
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		data = []byte(v)
	case []byte:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		data = b
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var conds []Condition
	if err := dec.Decode(&conds); err != nil {
		if errors.Is(err, ErrInvalidCondition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCondition, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after conditions", ErrInvalidCondition)
	}
	for i, c := range conds {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return conds, nil
}

// listItems returns the elements of v when v is a slice or array.
// Byte slices are not lists.
func listItems(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func checkScalar(field string, v any) error {
	switch x := v.(type) {
	case nil:
		return fmt.Errorf("%w: value for %q is required", ErrInvalidCondition, field)
	case string, bool, json.Number, time.Time,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("%w: value for %q must be finite", ErrInvalidCondition, field)
		}
		return nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: value for %q must be finite", ErrInvalidCondition, field)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported value type %T for %q", ErrInvalidCondition, v, field)
	}
}

func literal(v any) string {
	switch x := v.(type) {
	case string:
		return ddl.QuoteLiteral(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case json.Number:
		return x.String()
	case time.Time:
		return ddl.QuoteLiteral(x.Format(time.RFC3339Nano))
	default:
		return fmt.Sprint(x)
	}
}

// bindValue converts decoded JSON numbers into driver-friendly values.
func bindValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
