package schema

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	elements := []Element{
		{FieldName: "name", DataType: String, Embedded: true},
		{FieldName: "age", DataType: Int32},
		{FieldName: "salary", DataType: Float64},
		{FieldName: "joined", DataType: TimestampMS},
	}

	s, err := Materialize(elements, VectorDimension)
	require.NoError(t, err)
	require.Equal(t, 5, s.NumFields())

	assert.True(t, arrow.TypeEqual(arrow.BinaryTypes.String, s.Field(0).Type))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int32, s.Field(1).Type))
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Float64, s.Field(2).Type))
	assert.True(t, arrow.TypeEqual(&arrow.TimestampType{Unit: arrow.Millisecond}, s.Field(3).Type))

	vec := s.Field(4)
	assert.Equal(t, VectorColumn, vec.Name)
	list, ok := vec.Type.(*arrow.FixedSizeListType)
	require.True(t, ok)
	assert.Equal(t, int32(VectorDimension), list.Len())
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Float32, list.Elem()))
	assert.True(t, HasVector(s))
}

func TestMaterialize_NoEmbeddedFields(t *testing.T) {
	s, err := Materialize([]Element{{FieldName: "title", DataType: String}}, VectorDimension)
	require.NoError(t, err)
	assert.Equal(t, 1, s.NumFields())
	assert.False(t, HasVector(s))
}

func TestMaterialize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		elements []Element
		target   error
		wantErr  string
	}{
		{
			name:     "unsupported_type",
			elements: []Element{{FieldName: "tags", DataType: "list<string>"}},
			target:   ErrUnsupportedType,
			wantErr:  `"list<string>"`,
		},
		{
			name:     "duplicate_field",
			elements: []Element{{FieldName: "a", DataType: String}, {FieldName: "a", DataType: Int64}},
			target:   ErrInvalidSchema,
			wantErr:  "duplicate field",
		},
		{
			name:     "reserved_vector_name",
			elements: []Element{{FieldName: VectorColumn, DataType: String}},
			target:   ErrInvalidSchema,
			wantErr:  "reserved",
		},
		{
			name:     "duplicate_field_case",
			elements: []Element{{FieldName: "Name", DataType: String}, {FieldName: "name", DataType: Int32}},
			target:   ErrInvalidSchema,
			wantErr:  `duplicate field "name"`,
		},
		{
			name:     "reserved_vector_case",
			elements: []Element{{FieldName: "Vector", DataType: String, Embedded: true}},
			target:   ErrInvalidSchema,
			wantErr:  `"Vector" is reserved`,
		},
		{
			name:    "empty",
			target:  ErrInvalidSchema,
			wantErr: "at least one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Materialize(tt.elements, VectorDimension)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Materialize([]Element{{FieldName: "bio", DataType: String, Embedded: true}}, 0)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestUnsupportedTypeError_As(t *testing.T) {
	_, err := Materialize([]Element{{FieldName: "price", DataType: "decimal"}}, VectorDimension)
	var ute *UnsupportedTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "price", ute.Field)
	assert.Equal(t, "decimal", ute.DataType)
}

func TestElementsFromArrow_RoundTrip(t *testing.T) {
	var elements []Element
	for i, dt := range SupportedDataTypes() {
		elements = append(elements, Element{
			FieldName: "f_" + string(rune('a'+i)),
			DataType:  dt,
			Embedded:  dt == String,
		})
	}

	s, err := Materialize(elements, 8)
	require.NoError(t, err)

	back, err := ElementsFromArrow(s)
	require.NoError(t, err)
	assert.Equal(t, elements, back)
}

func TestElementsFromArrow_Unsupported(t *testing.T) {
	s := arrow.NewSchema([]arrow.Field{{Name: "blob", Type: arrow.BinaryTypes.Binary}}, nil)
	_, err := ElementsFromArrow(s)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseDataType(t *testing.T) {
	dt, err := ParseDataType(" Timestamp[MS] ")
	require.NoError(t, err)
	assert.Equal(t, TimestampMS, dt)
	assert.True(t, dt.IsTimestamp())

	_, err = ParseDataType("uuid")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
