package jsonwire

import (
	"net/url"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/vantage/internal/record"
	"github.com/roach88/vantage/internal/types"
)

// String stores Go strings as JSON strings.
var String Type[string] = types.Func(VariantString,
	func(s string) Value { return StringValue(s) },
	func(v Value) (string, bool) {
		s, ok := v.(StringValue)
		return string(s), ok
	})

// Int64 stores integers as JSON number literals.
var Int64 Type[int64] = types.Func(VariantInt,
	func(n int64) Value { return IntValue(n) },
	func(v Value) (int64, bool) {
		n, ok := v.(NumberValue)
		if !ok || !n.IsInt() {
			return 0, false
		}
		i, err := n.Int64()
		return i, err == nil
	})

// Int is Int64 for the platform int.
var Int Type[int] = types.Func(VariantInt,
	func(n int) Value { return IntValue(int64(n)) },
	func(v Value) (int, bool) {
		i, ok := Int64.FromWire(v)
		if !ok || int64(int(i)) != i {
			return 0, false
		}
		return int(i), true
	})

// Float64 stores floats as JSON numbers. Untagged integer literals decode.
// NaN and the infinities encode as null and do not decode back.
var Float64 Type[float64] = types.Func(VariantFloat,
	func(f float64) Value { return FloatValue(f) },
	func(v Value) (float64, bool) {
		n, ok := v.(NumberValue)
		if !ok {
			return 0, false
		}
		f, err := n.Float64()
		return f, err == nil
	})

// Bool stores booleans.
var Bool Type[bool] = types.Func(VariantBool,
	func(b bool) Value { return BoolValue(b) },
	func(v Value) (bool, bool) {
		b, ok := v.(BoolValue)
		return bool(b), ok
	})

// Decimal stores arbitrary-precision decimals as {"decimal": "<text>"},
// keeping every digit and the exponent.
var Decimal Type[*apd.Decimal] = types.Func(VariantDecimal,
	func(d *apd.Decimal) Value { return DecimalValue(d) },
	func(v Value) (*apd.Decimal, bool) {
		o, ok := v.(ObjectValue)
		if !ok {
			return nil, false
		}
		text, ok := decimalText(o)
		if !ok {
			return nil, false
		}
		d, _, err := apd.NewFromString(text)
		if err != nil {
			return nil, false
		}
		return d, true
	})

// DecimalValue encodes d in the decimal object form.
func DecimalValue(d *apd.Decimal) ObjectValue {
	return NewObject(record.P[Value](decimalKey, StringValue(d.String())))
}

// UUID stores UUIDs in their canonical hyphenated text under the String
// variant; decoding rejects strings that do not parse.
var UUID Type[uuid.UUID] = types.Func(VariantString,
	func(u uuid.UUID) Value { return StringValue(u.String()) },
	func(v Value) (uuid.UUID, bool) {
		s, ok := v.(StringValue)
		if !ok {
			return uuid.Nil, false
		}
		u, err := uuid.Parse(string(s))
		return u, err == nil
	})

// URL stores absolute URLs as strings.
var URL Type[*url.URL] = types.Func(VariantString,
	func(u *url.URL) Value { return StringValue(u.String()) },
	func(v Value) (*url.URL, bool) {
		s, ok := v.(StringValue)
		if !ok {
			return nil, false
		}
		u, err := url.Parse(string(s))
		if err != nil || u.Scheme == "" {
			return nil, false
		}
		return u, true
	})

// Time stores instants as RFC 3339 strings with nanosecond precision.
var Time Type[time.Time] = types.Func(VariantString,
	func(t time.Time) Value { return StringValue(t.Format(time.RFC3339Nano)) },
	func(v Value) (time.Time, bool) {
		s, ok := v.(StringValue)
		if !ok {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339Nano, string(s))
		return t, err == nil
	})

// Strings stores string lists as arrays; any non-string element fails.
var Strings Type[[]string] = types.Func(VariantArray,
	func(ss []string) Value {
		arr := make(ArrayValue, len(ss))
		for i, s := range ss {
			arr[i] = StringValue(s)
		}
		return arr
	},
	func(v Value) ([]string, bool) {
		arr, ok := v.(ArrayValue)
		if !ok {
			return nil, false
		}
		out := make([]string, len(arr))
		for i, elem := range arr {
			s, ok := elem.(StringValue)
			if !ok {
				return nil, false
			}
			out[i] = string(s)
		}
		return out, true
	})
