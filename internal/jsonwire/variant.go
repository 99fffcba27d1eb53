package jsonwire

import (
	"github.com/roach88/vantage/internal/types"
)

// Variant is the semantic category of a JSON value.
type Variant int

const (
	VariantNull Variant = iota
	VariantBool
	VariantInt
	VariantFloat
	VariantDecimal
	VariantString
	VariantArray
	VariantObject
)

var variantNames = [...]string{
	VariantNull:    "Null",
	VariantBool:    "Bool",
	VariantInt:     "Int",
	VariantFloat:   "Float",
	VariantDecimal: "Decimal",
	VariantString:  "String",
	VariantArray:   "Array",
	VariantObject:  "Object",
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return "Unknown"
	}
	return variantNames[v]
}

// decimalKey is the single key of the object form a decimal is stored in.
const decimalKey = "decimal"

// Sniff reports the variant of a JSON value.
// Every JSON value self-describes, so only a nil Value is untagged.
func Sniff(v Value) (Variant, bool) {
	switch val := v.(type) {
	case NullValue:
		return VariantNull, true
	case BoolValue:
		return VariantBool, true
	case NumberValue:
		if val.IsInt() {
			return VariantInt, true
		}
		return VariantFloat, true
	case StringValue:
		return VariantString, true
	case ArrayValue:
		return VariantArray, true
	case ObjectValue:
		if _, ok := decimalText(val); ok {
			return VariantDecimal, true
		}
		return VariantObject, true
	}
	return 0, false
}

// decimalText extracts the text of {"decimal": "<text>"}.
func decimalText(o ObjectValue) (string, bool) {
	if o.Len() != 1 {
		return "", false
	}
	s, ok := o.Get(decimalKey)
	if !ok {
		return "", false
	}
	text, ok := s.(StringValue)
	return string(text), ok
}

// System is the JSON wire system.
var System = types.NewSystem("json", Sniff)

// NullSentinel spells an absent value as JSON null.
var NullSentinel = types.NullSentinel[Value, Variant]{
	Variant: VariantNull,
	Value:   NullValue{},
	Is: func(v Value) bool {
		_, ok := v.(NullValue)
		return ok || v == nil
	},
}

// Any is a type-erased JSON value.
type Any = types.Any[Value, Variant]

// Type is a concrete Go type's JSON codec.
type Type[C any] = types.Type[Value, Variant, C]

// FromWire tags a raw JSON value with its sniffed variant.
func FromWire(v Value) Any {
	return System.FromWire(v)
}

// Nullable wraps t so that nil maps to JSON null.
func Nullable[C any](t Type[C]) Type[*C] {
	return types.Nullable(t, NullSentinel)
}
