package jsonwire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/vantage/internal/record"
)

// Value is a sealed interface over JSON values.
// Only NullValue, BoolValue, NumberValue, StringValue, ArrayValue and
// ObjectValue implement it.
//
// String renders compact JSON; it is what expression previews show.
type Value interface {
	jsonValue() // Sealed
	String() string
}

// NullValue is JSON null.
type NullValue struct{}

func (NullValue) jsonValue() {}

func (NullValue) String() string { return "null" }

// MarshalJSON implements json.Marshaler.
func (NullValue) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// BoolValue is a JSON boolean.
type BoolValue bool

func (BoolValue) jsonValue() {}

func (b BoolValue) String() string { return strconv.FormatBool(bool(b)) }

// NumberValue is a JSON number kept as its literal text so that large
// integers and long fractions survive a round trip unchanged.
type NumberValue string

func (NumberValue) jsonValue() {}

func (n NumberValue) String() string { return string(n) }

// MarshalJSON implements json.Marshaler.
func (n NumberValue) MarshalJSON() ([]byte, error) {
	if !json.Valid([]byte(n)) {
		return nil, fmt.Errorf("invalid number literal %q", string(n))
	}
	return []byte(n), nil
}

// IsInt reports whether the literal has no fraction or exponent.
func (n NumberValue) IsInt() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// Int64 parses the literal as an integer.
func (n NumberValue) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 parses the literal as a float.
func (n NumberValue) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// StringValue is a JSON string.
type StringValue string

func (StringValue) jsonValue() {}

func (s StringValue) String() string {
	return string(quote(string(s)))
}

// ArrayValue is a JSON array.
type ArrayValue []Value

func (ArrayValue) jsonValue() {}

func (a ArrayValue) String() string { return render(a) }

// MarshalJSON implements json.Marshaler.
func (a ArrayValue) MarshalJSON() ([]byte, error) { return Marshal(a) }

// ObjectValue is a JSON object with insertion-ordered keys.
// Build with NewObject; the zero value is read-only.
type ObjectValue struct {
	*record.Record[Value]
}

func (ObjectValue) jsonValue() {}

func (o ObjectValue) String() string { return render(o) }

// MarshalJSON implements json.Marshaler.
func (o ObjectValue) MarshalJSON() ([]byte, error) { return Marshal(o) }

// NewObject creates an object from pairs in order.
// Example: NewObject(record.P("name", StringValue("cart")), record.P("count", IntValue(5)))
func NewObject(pairs ...record.Pair[Value]) ObjectValue {
	return ObjectValue{record.FromPairs(pairs...)}
}

// IntValue creates an integer number.
func IntValue(n int64) NumberValue {
	return NumberValue(strconv.FormatInt(n, 10))
}

// FloatValue creates a number from f. NaN and infinities have no JSON
// spelling and become null.
func FloatValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NullValue{}
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return NumberValue(s)
}

func render(v Value) string {
	b, err := Marshal(v)
	if err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}
	return string(b)
}

// Marshal encodes v as compact JSON, keeping object key order.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, NullValue:
		buf.WriteString("null")
	case BoolValue:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case NumberValue:
		b, err := val.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(b)
	case StringValue:
		buf.Write(quote(string(val)))
	case ArrayValue:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case ObjectValue:
		buf.WriteByte('{')
		i := 0
		for k, elem := range val.All() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(quote(k))
			buf.WriteByte(':')
			if err := writeValue(buf, elem); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
			i++
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown Value type: %T", v)
	}
	return nil
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// Parse decodes one JSON document into a Value.
// Object key order and number literals are preserved.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return NullValue{}, nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return NumberValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := ArrayValue{}
			for dec.More() {
				elem, err := parseValue(dec)
				if err != nil {
					return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				elem, err := parseValue(dec)
				if err != nil {
					return nil, fmt.Errorf("object[%q]: %w", key, err)
				}
				obj.Set(key, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
