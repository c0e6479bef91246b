package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is matched by every *UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported data type")

	// ErrSchemaGeneration is matched by *ExhaustedError.
	ErrSchemaGeneration = errors.New("schema generation failed")

	// ErrInvalidSchema is returned for structurally invalid element lists.
	ErrInvalidSchema = errors.New("invalid schema")
)

// UnsupportedTypeError reports a data type outside SupportedDataTypes.
type UnsupportedTypeError struct {
	Field    string
	DataType string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unsupported data type %q", e.DataType)
	}
	return fmt.Sprintf("unsupported data type %q for field %q", e.DataType, e.Field)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// ExhaustedError is returned when no valid description was produced within
// the allowed number of attempts.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to generate valid schema after %d attempts: last error: %v", e.Attempts, e.Last)
}

// Unwrap exposes both ErrSchemaGeneration and the last validation failure.
func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrSchemaGeneration, e.Last}
}
