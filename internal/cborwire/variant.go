package cborwire

import (
	"bytes"

	"github.com/roach88/vantage/internal/types"
)

// Variant is the semantic category of a CBOR value, following the
// SurrealDB tag conventions.
type Variant int

const (
	VariantNone Variant = iota
	VariantBool
	VariantInt
	VariantFloat
	VariantString
	VariantBytes
	VariantDecimal
	VariantDateTime
	VariantUUID
	VariantThing
	VariantArray
	VariantObject
)

var variantNames = [...]string{
	VariantNone:     "None",
	VariantBool:     "Bool",
	VariantInt:      "Int",
	VariantFloat:    "Float",
	VariantString:   "String",
	VariantBytes:    "Bytes",
	VariantDecimal:  "Decimal",
	VariantDateTime: "DateTime",
	VariantUUID:     "Uuid",
	VariantThing:    "Thing",
	VariantArray:    "Array",
	VariantObject:   "Object",
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return "Unknown"
	}
	return variantNames[v]
}

// Tag numbers.
const (
	TagDateTime uint64 = 0
	TagNone     uint64 = 6
	TagThing    uint64 = 8
	TagDecimal  uint64 = 10
	TagUUID     uint64 = 37
)

var tagVariants = map[uint64]Variant{
	TagNone:     VariantNone,
	TagDecimal:  VariantDecimal,
	TagDateTime: VariantDateTime,
	TagUUID:     VariantUUID,
	TagThing:    VariantThing,
}

// Sniff reports the variant of a CBOR value from its initial byte and,
// for tagged items, the tag number. Unknown tags, undefined and malformed
// input are untagged.
func Sniff(v Value) (Variant, bool) {
	if len(v) == 0 {
		return 0, false
	}
	switch v[0] >> 5 {
	case 0, 1:
		return VariantInt, true
	case 2:
		return VariantBytes, true
	case 3:
		return VariantString, true
	case 4:
		return VariantArray, true
	case 5:
		return VariantObject, true
	case 6:
		n, ok := tagNumber(v)
		if !ok {
			return 0, false
		}
		variant, ok := tagVariants[n]
		return variant, ok
	}

	switch v[0] {
	case 0xf4, 0xf5:
		return VariantBool, true
	case 0xf6:
		return VariantNone, true
	case 0xf9, 0xfa, 0xfb:
		return VariantFloat, true
	}
	return 0, false
}

// noneValue is tag 6 wrapping null.
var noneValue = Value{0xc6, 0xf6}

// None returns a fresh NONE sentinel.
func None() Value {
	return bytes.Clone(noneValue)
}

// IsNone reports whether v is the NONE sentinel or plain CBOR null.
func IsNone(v Value) bool {
	return bytes.Equal(v, noneValue) || bytes.Equal(v, Value{0xf6})
}

// System is the CBOR wire system.
var System = types.NewSystem("cbor", Sniff)

// NullSentinel spells an absent value as NONE (tag 6).
var NullSentinel = types.NullSentinel[Value, Variant]{
	Variant: VariantNone,
	Value:   None(),
	New:     None,
	Is:      IsNone,
}

// Any is a type-erased CBOR value.
type Any = types.Any[Value, Variant]

// Type is a concrete Go type's CBOR codec.
type Type[C any] = types.Type[Value, Variant, C]

// FromWire tags a raw CBOR value with its sniffed variant.
func FromWire(v Value) Any {
	return System.FromWire(v)
}

// Nullable wraps t so that nil maps to NONE.
func Nullable[C any](t Type[C]) Type[*C] {
	return types.Nullable(t, NullSentinel)
}
