package store

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
)

var floatArrayRe = regexp.MustCompile(`^FLOAT\[(\d+)\]$`)

// columnType maps an Arrow field type onto the DuckDB column type.
func columnType(t arrow.DataType) (string, error) {
	switch t.ID() {
	case arrow.STRING:
		return "VARCHAR", nil
	case arrow.INT32:
		return "INTEGER", nil
	case arrow.INT64:
		return "BIGINT", nil
	case arrow.FLOAT32:
		return "FLOAT", nil
	case arrow.FLOAT64:
		return "DOUBLE", nil
	case arrow.BOOL:
		return "BOOLEAN", nil
	case arrow.TIMESTAMP:
		switch t.(*arrow.TimestampType).Unit {
		case arrow.Second:
			return "TIMESTAMP_S", nil
		case arrow.Millisecond:
			return "TIMESTAMP_MS", nil
		case arrow.Microsecond:
			return "TIMESTAMP", nil
		case arrow.Nanosecond:
			return "TIMESTAMP_NS", nil
		}
	case arrow.FIXED_SIZE_LIST:
		list := t.(*arrow.FixedSizeListType)
		if list.Elem().ID() == arrow.FLOAT32 {
			return fmt.Sprintf("FLOAT[%d]", list.Len()), nil
		}
	}
	return "", fmt.Errorf("no DuckDB column type for arrow type %s", t)
}

// arrowType is the inverse of columnType for types reported by information_schema.
func arrowType(column string) (arrow.DataType, error) {
	switch column {
	case "VARCHAR":
		return arrow.BinaryTypes.String, nil
	case "INTEGER":
		return arrow.PrimitiveTypes.Int32, nil
	case "BIGINT":
		return arrow.PrimitiveTypes.Int64, nil
	case "FLOAT":
		return arrow.PrimitiveTypes.Float32, nil
	case "DOUBLE":
		return arrow.PrimitiveTypes.Float64, nil
	case "BOOLEAN":
		return arrow.FixedWidthTypes.Boolean, nil
	case "TIMESTAMP_S":
		return &arrow.TimestampType{Unit: arrow.Second}, nil
	case "TIMESTAMP_MS":
		return &arrow.TimestampType{Unit: arrow.Millisecond}, nil
	case "TIMESTAMP":
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case "TIMESTAMP_NS":
		return &arrow.TimestampType{Unit: arrow.Nanosecond}, nil
	}
	if m := floatArrayRe.FindStringSubmatch(column); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, err
		}
		return arrow.FixedSizeListOf(int32(n), arrow.PrimitiveTypes.Float32), nil
	}
	return nil, fmt.Errorf("unsupported DuckDB column type %q", column)
}
