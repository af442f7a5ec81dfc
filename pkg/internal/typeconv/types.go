package typeconv

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

var (
	// ErrRowWidth reports a row whose length differs from the column count.
	ErrRowWidth = errors.New("row width does not match column count")

	// ErrNotScalar reports a row value that is not a scalar.
	ErrNotScalar = errors.New("value is not a scalar")
)

// NormalizeRow checks that row is an ordered sequence of width scalars and
// returns a fresh copy with every value normalized by Normalize.
func NormalizeRow(row []any, width int) ([]any, error) {
	if len(row) != width {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(row), width)
	}
	out := make([]any, len(row))
	for i, v := range row {
		n, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// Normalize maps a driver scalar onto the small set of types a Result
// carries: nil, bool, int64, float64, string, []byte and time.Time.
// Integers that do not fit an int64 are kept exact as decimal strings.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, time.Time:
		return x, nil
	case []byte:
		return append([]byte(nil), x...), nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return float64(x), nil
	default:
		return namedScalar(v)
	}
}

// namedScalar unwraps named types over a scalar kind, such as a driver's
// `type RowID string`. Everything else is rejected.
func namedScalar(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotScalar, v)
	}
}

func fromUint(u uint64) any {
	if u > math.MaxInt64 {
		return fmt.Sprintf("%d", u)
	}
	return int64(u)
}

// CanonicalType normalizes a driver-reported column type name for display.
func CanonicalType(typ string) string {
	t := strings.ToUpper(strings.TrimSpace(typ))
	switch t {
	case "NCHAR", "CHAR", "CHARACTER":
		return "CHAR"
	case "NVARCHAR2", "VARCHAR2", "VARCHAR", "LONGVARCHAR", "NCHARVARYING":
		return "VARCHAR2"
	case "NUMBER", "NUMERIC", "DECIMAL", "INTEGER", "INT", "SMALLINT":
		return "NUMBER"
	case "IBFLOAT", "BINARY_FLOAT":
		return "BINARY_FLOAT"
	case "IBDOUBLE", "BINARY_DOUBLE":
		return "BINARY_DOUBLE"
	case "TIMESTAMP", "TIMESTAMPDTY", "TIMESTAMPTZ_DTY", "TIMESTAMPLTZ_DTY":
		return "TIMESTAMP"
	case "OCICLOBLOCATOR", "CLOB", "NCLOB":
		return "CLOB"
	case "OCIBLOBLOCATOR", "BLOB":
		return "BLOB"
	case "RAW", "LONGRAW", "LONG RAW":
		return "RAW"
	default:
		return t
	}
}
