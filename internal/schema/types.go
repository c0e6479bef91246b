package schema

import (
	"fmt"
	"strings"
)

// DataType is a field data type an LLM may choose for a schema element.
type DataType string

const (
	String      DataType = "string"
	Int32       DataType = "int32"
	Int64       DataType = "int64"
	Float32     DataType = "float32"
	Float64     DataType = "float64"
	Bool        DataType = "bool"
	TimestampS  DataType = "timestamp[s]"
	TimestampMS DataType = "timestamp[ms]"
	TimestampUS DataType = "timestamp[us]"
	TimestampNS DataType = "timestamp[ns]"
)

const (
	// VectorColumn is the name of the embedding column added to tables with
	// embedded fields.
	VectorColumn = "vector"

	// VectorDimension is the embedding width of the vector column.
	VectorDimension = 1536

	// DefaultMaxRetries is the number of completion attempts before giving up.
	DefaultMaxRetries = 3
)

// SupportedDataTypes lists the accepted data types in prompt order.
func SupportedDataTypes() []DataType {
	return []DataType{String, Int32, Int64, Float32, Float64, Bool, TimestampS, TimestampMS, TimestampUS, TimestampNS}
}

// Supported reports whether d is one of SupportedDataTypes.
func (d DataType) Supported() bool {
	for _, s := range SupportedDataTypes() {
		if d == s {
			return true
		}
	}
	return false
}

// IsTimestamp reports whether d is one of the timestamp variants.
func (d DataType) IsTimestamp() bool {
	return strings.HasPrefix(string(d), "timestamp[")
}

// ParseDataType returns the DataType named by s, ignoring case and surrounding space.
func ParseDataType(s string) (DataType, error) {
	d := DataType(strings.ToLower(strings.TrimSpace(s)))
	if !d.Supported() {
		return "", &UnsupportedTypeError{DataType: s}
	}
	return d, nil
}

// Element is one field of a table description.
type Element struct {
	FieldName string   `json:"field_name"`
	DataType  DataType `json:"data_type"`
	Embedded  bool     `json:"embedded"`
}

// Description is a table name, a human description and its elements.
type Description struct {
	TableName   string    `json:"table_name"`
	Description string    `json:"description"`
	Elements    []Element `json:"schema_elements"`
}

// EmbeddedFields returns the names of embedded elements in declaration order.
func (d Description) EmbeddedFields() []string {
	return EmbeddedFields(d.Elements)
}

// EmbeddedFields returns the names of embedded elements in declaration order.
func EmbeddedFields(elements []Element) []string {
	var names []string
	for _, e := range elements {
		if e.Embedded {
			names = append(names, e.FieldName)
		}
	}
	return names
}

// Element returns the element named name.
func (d Description) Element(name string) (Element, bool) {
	for _, e := range d.Elements {
		if e.FieldName == name {
			return e, true
		}
	}
	return Element{}, false
}

func (d Description) String() string {
	return fmt.Sprintf("%s (%d fields)", d.TableName, len(d.Elements))
}
