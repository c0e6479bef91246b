package filter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operator is a comparison operator usable in a Condition.
type Operator string

const (
	Equals       Operator = "="
	NotEquals    Operator = "!="
	GreaterThan  Operator = ">"
	LessThan     Operator = "<"
	GreaterEqual Operator = ">="
	LessEqual    Operator = "<="
	In           Operator = "IN"
	NotIn        Operator = "NOT IN"
	Like         Operator = "LIKE"
)

// operatorAliases maps the symbolic names an agent may send to operators.
var operatorAliases = map[string]Operator{
	"EQUALS":        Equals,
	"NOT_EQUALS":    NotEquals,
	"GREATER_THAN":  GreaterThan,
	"LESS_THAN":     LessThan,
	"GREATER_EQUAL": GreaterEqual,
	"LESS_EQUAL":    LessEqual,
	"NOT_IN":        NotIn,
	"<>":            NotEquals,
	"==":            Equals,
}

// Operators returns all supported operators.
func Operators() []Operator {
	return []Operator{Equals, NotEquals, GreaterThan, LessThan, GreaterEqual, LessEqual, In, NotIn, Like}
}

// ParseOperator normalizes s (case, surrounding and repeated whitespace) and
// returns the matching Operator.
func ParseOperator(s string) (Operator, error) {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	op := Operator(norm)
	if op.Valid() {
		return op, nil
	}
	if alias, ok := operatorAliases[norm]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, s)
}

// Valid reports whether o is a supported operator.
func (o Operator) Valid() bool {
	switch o {
	case Equals, NotEquals, GreaterThan, LessThan, GreaterEqual, LessEqual, In, NotIn, Like:
		return true
	}
	return false
}

// TakesList reports whether o expects a list value.
func (o Operator) TakesList() bool {
	return o == In || o == NotIn
}

func (o Operator) String() string {
	return string(o)
}

// UnmarshalJSON rejects unknown operators.
func (o *Operator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: operator must be a string", ErrInvalidCondition)
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
