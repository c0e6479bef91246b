package schema

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// metaEmbedded marks fields whose values feed the vector column.
const metaEmbedded = "aura.embedded"

// ArrowType returns the Arrow type for d.
func ArrowType(d DataType) (arrow.DataType, error) {
	switch d {
	case String:
		return arrow.BinaryTypes.String, nil
	case Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case TimestampS:
		return &arrow.TimestampType{Unit: arrow.Second}, nil
	case TimestampMS:
		return &arrow.TimestampType{Unit: arrow.Millisecond}, nil
	case TimestampUS:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case TimestampNS:
		return &arrow.TimestampType{Unit: arrow.Nanosecond}, nil
	}
	return nil, &UnsupportedTypeError{DataType: string(d)}
}

// DataTypeFromArrow is the inverse of ArrowType.
func DataTypeFromArrow(t arrow.DataType) (DataType, error) {
	switch t.ID() {
	case arrow.STRING:
		return String, nil
	case arrow.INT32:
		return Int32, nil
	case arrow.INT64:
		return Int64, nil
	case arrow.FLOAT32:
		return Float32, nil
	case arrow.FLOAT64:
		return Float64, nil
	case arrow.BOOL:
		return Bool, nil
	case arrow.TIMESTAMP:
		switch t.(*arrow.TimestampType).Unit {
		case arrow.Second:
			return TimestampS, nil
		case arrow.Millisecond:
			return TimestampMS, nil
		case arrow.Microsecond:
			return TimestampUS, nil
		case arrow.Nanosecond:
			return TimestampNS, nil
		}
	}
	return "", &UnsupportedTypeError{DataType: t.String()}
}

// VectorType returns the Arrow type of the vector column: fixed_size_list<float32>[dim].
func VectorType(dim int) arrow.DataType {
	return arrow.FixedSizeListOf(int32(dim), arrow.PrimitiveTypes.Float32)
}

// Materialize builds the Arrow schema for elements. All fields are nullable.
// When any element is embedded, a single vector column of width dim is
// appended after the declared fields.
func Materialize(elements []Element, dim int) (*arrow.Schema, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: at least one schema element is required", ErrInvalidSchema)
	}

	seen := make(map[string]struct{}, len(elements))
	fields := make([]arrow.Field, 0, len(elements)+1)
	embedded := false
	for _, e := range elements {
		if e.FieldName == "" {
			return nil, fmt.Errorf("%w: field name is required", ErrInvalidSchema)
		}
		// Column names are case-insensitive in DuckDB, quoted or not.
		if strings.EqualFold(e.FieldName, VectorColumn) {
			return nil, fmt.Errorf("%w: field name %q is reserved", ErrInvalidSchema, e.FieldName)
		}
		key := strings.ToLower(e.FieldName)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, e.FieldName)
		}
		seen[key] = struct{}{}

		typ, err := ArrowType(e.DataType)
		if err != nil {
			return nil, &UnsupportedTypeError{Field: e.FieldName, DataType: string(e.DataType)}
		}

		field := arrow.Field{Name: e.FieldName, Type: typ, Nullable: true}
		if e.Embedded {
			embedded = true
			field.Metadata = arrow.NewMetadata([]string{metaEmbedded}, []string{"true"})
		}
		fields = append(fields, field)
	}

	if embedded {
		if dim <= 0 {
			return nil, fmt.Errorf("%w: vector dimension must be positive, got %d", ErrInvalidSchema, dim)
		}
		fields = append(fields, arrow.Field{Name: VectorColumn, Type: VectorType(dim), Nullable: true})
	}

	return arrow.NewSchema(fields, nil), nil
}

// ElementsFromArrow reads elements back from an Arrow schema, skipping the
// vector column. The embedded flag survives only when the schema carries the
// field metadata written by Materialize.
func ElementsFromArrow(s *arrow.Schema) ([]Element, error) {
	elements := make([]Element, 0, s.NumFields())
	for _, f := range s.Fields() {
		if f.Name == VectorColumn {
			continue
		}
		dt, err := DataTypeFromArrow(f.Type)
		if err != nil {
			return nil, &UnsupportedTypeError{Field: f.Name, DataType: f.Type.String()}
		}
		embedded := false
		if i := f.Metadata.FindKey(metaEmbedded); i >= 0 {
			embedded = f.Metadata.Values()[i] == "true"
		}
		elements = append(elements, Element{FieldName: f.Name, DataType: dt, Embedded: embedded})
	}
	return elements, nil
}

// HasVector reports whether s carries the vector column.
func HasVector(s *arrow.Schema) bool {
	return len(s.FieldIndices(VectorColumn)) > 0
}
