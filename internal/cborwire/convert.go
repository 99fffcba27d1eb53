package cborwire

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/types"
)

// FromJSON re-encodes a JSON value as CBOR.
//
// JSON null becomes NONE, decimals in the {"decimal": ...} form become
// tag 10, and objects keep their key order.
func FromJSON(v jsonwire.Value) (Value, error) {
	switch val := v.(type) {
	case nil, jsonwire.NullValue:
		return None(), nil
	case jsonwire.BoolValue:
		return Bool.ToWire(bool(val)), nil
	case jsonwire.NumberValue:
		if val.IsInt() {
			if n, err := val.Int64(); err == nil {
				return Int64.ToWire(n), nil
			}
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", string(val), err)
		}
		return Float64.ToWire(f), nil
	case jsonwire.StringValue:
		return String.ToWire(string(val)), nil
	case jsonwire.ArrayValue:
		items := make([]Value, len(val))
		for i, elem := range val {
			item, err := FromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			items[i] = item
		}
		return Encode(items)
	case jsonwire.ObjectValue:
		if d, ok := types.TryGet(jsonwire.FromWire(val), jsonwire.Decimal); ok {
			return Decimal.ToWire(d), nil
		}
		return encodeObject(val)
	default:
		return nil, fmt.Errorf("unsupported JSON value %T", v)
	}
}

// encodeObject writes a definite-length map in insertion order.
// Go maps have no order, so the pairs are streamed after a hand-written head.
func encodeObject(o jsonwire.ObjectValue) (Value, error) {
	out := Value(appendHead(nil, 5, uint64(o.Len())))
	for k, elem := range o.All() {
		item, err := FromJSON(elem)
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		out = append(out, String.ToWire(k)...)
		out = append(out, item...)
	}
	return out, nil
}

// objectToJSON reads map pairs in wire order. Keys must be text strings.
func objectToJSON(v Value) (jsonwire.Value, error) {
	major, n, size, ok := readHead(v)
	if !ok || major != 5 {
		return nil, fmt.Errorf("unsupported map encoding %s", v)
	}

	dec := cbor.NewDecoder(bytes.NewReader(v[size:]))
	obj := jsonwire.NewObject()
	for i := uint64(0); i < n; i++ {
		var key string
		if err := dec.Decode(&key); err != nil {
			return nil, fmt.Errorf("map key %d: %w", i, err)
		}
		var item cbor.RawMessage
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("map[%q]: %w", key, err)
		}
		elem, err := ToJSON(Value(item))
		if err != nil {
			return nil, fmt.Errorf("map[%q]: %w", key, err)
		}
		obj.Set(key, elem)
	}
	return obj, nil
}

// ToJSON converts a CBOR value back to JSON.
//
// NONE and null become null, decimals the {"decimal": ...} form, datetimes
// and record ids their text, UUIDs their hyphenated text, and byte strings
// an array of numbers.
func ToJSON(v Value) (jsonwire.Value, error) {
	a := FromWire(v)
	variant, tagged := a.Variant()
	if !tagged {
		return nil, fmt.Errorf("unsupported CBOR item %s", v)
	}

	switch variant {
	case VariantNone:
		return jsonwire.NullValue{}, nil
	case VariantDecimal:
		if d, ok := types.TryGet(a, Decimal); ok {
			return jsonwire.DecimalValue(d), nil
		}
	case VariantDateTime:
		if t, ok := types.TryGet(a, DateTime); ok {
			return jsonwire.Time.ToWire(t), nil
		}
	case VariantUUID:
		if u, ok := types.TryGet(a, UUID); ok {
			return jsonwire.UUID.ToWire(u), nil
		}
	case VariantThing:
		if t, ok := types.TryGet(a, ThingType); ok {
			return jsonwire.StringValue(t.String()), nil
		}
	case VariantArray:
		var items []Value
		if err := Decode(v, &items); err != nil {
			return nil, err
		}
		arr := make(jsonwire.ArrayValue, len(items))
		for i, item := range items {
			elem, err := ToJSON(item)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = elem
		}
		return arr, nil
	case VariantObject:
		return objectToJSON(v)
	default:
		var x any
		if err := Decode(v, &x); err != nil {
			return nil, err
		}
		if b, ok := x.([]byte); ok {
			arr := make(jsonwire.ArrayValue, len(b))
			for i, c := range b {
				arr[i] = jsonwire.IntValue(int64(c))
			}
			return arr, nil
		}
		return jsonwire.FromGo(x)
	}
	return nil, fmt.Errorf("malformed %s item %s", variant, v)
}
