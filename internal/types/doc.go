// Package types implements the typed-value marker system.
//
// A wire system (JSON, CBOR) is described by a wire value type W and a
// closed variant enumeration V. Concrete Go types join the system through
// a Type[W, V, C] value that encodes, decodes and names the variant.
//
// Values cross storage boundaries as Any[W, V]: an encoded value plus an
// optional variant tag. TryGet recovers the concrete value, rejecting
// values whose tag does not match before attempting to decode:
//
//	a := types.New(jsonwire.Int64, 42)
//	n, ok := types.TryGet(a, jsonwire.Int64) // 42, true
//	_, ok = types.TryGet(a, jsonwire.String) // false, variant mismatch
//
// Schema lifts the same mechanism to whole entities, converting them to
// and from ordered records field by field.
package types
