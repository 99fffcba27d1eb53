package jsonwire

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/vantage/internal/record"
)

// FromGo converts a decoded Go value (from encoding/json, yaml.v3, CUE or
// a database driver) into a Value.
//
// Plain maps have no key order; their keys are sorted the canonical way so
// the result is deterministic. Use *record.Record[any] to keep an order.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return NullValue{}, nil
	case Value:
		return val, nil
	case bool:
		return BoolValue(val), nil
	case string:
		return StringValue(val), nil
	case []byte:
		return StringValue(val), nil
	case int:
		return IntValue(int64(val)), nil
	case int8:
		return IntValue(int64(val)), nil
	case int16:
		return IntValue(int64(val)), nil
	case int32:
		return IntValue(int64(val)), nil
	case int64:
		return IntValue(val), nil
	case uint:
		return NumberValue(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return IntValue(int64(val)), nil
	case uint16:
		return IntValue(int64(val)), nil
	case uint32:
		return IntValue(int64(val)), nil
	case uint64:
		return NumberValue(strconv.FormatUint(val, 10)), nil
	case float32:
		return FloatValue(float64(val)), nil
	case float64:
		return FloatValue(val), nil
	case json.Number:
		return NumberValue(val), nil
	case *apd.Decimal:
		return DecimalValue(val), nil
	case apd.Decimal:
		return DecimalValue(&val), nil
	case uuid.UUID:
		return StringValue(val.String()), nil
	case time.Time:
		return StringValue(val.Format(time.RFC3339Nano)), nil
	case []string:
		return Strings.ToWire(val), nil
	case []any:
		arr := make(ArrayValue, len(val))
		for i, elem := range val {
			w, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = w
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)

		obj := NewObject()
		for _, k := range keys {
			w, err := FromGo(val[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj.Set(k, w)
		}
		return obj, nil
	case *record.Record[any]:
		obj := NewObject()
		for k, elem := range val.All() {
			w, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj.Set(k, w)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToGo converts v into the plain Go values a database driver binds:
// nil, bool, int64, float64, string, or for composites their JSON text.
// Decimals bind as their exact text.
func ToGo(v Value) (any, error) {
	switch val := v.(type) {
	case nil, NullValue:
		return nil, nil
	case BoolValue:
		return bool(val), nil
	case NumberValue:
		if val.IsInt() {
			if i, err := val.Int64(); err == nil {
				return i, nil
			}
		}
		return val.Float64()
	case StringValue:
		return string(val), nil
	case ObjectValue:
		if text, ok := decimalText(val); ok {
			return text, nil
		}
		return val.String(), nil
	case ArrayValue:
		return val.String(), nil
	default:
		return nil, fmt.Errorf("unsupported Value type: %T", v)
	}
}
