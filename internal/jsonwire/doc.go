// Package jsonwire is the JSON wire system.
//
// Values are a sealed Value interface (NullValue, BoolValue, NumberValue,
// StringValue, ArrayValue, ObjectValue) with insertion-ordered objects and
// lossless number literals. Every JSON value self-describes its Variant;
// decimals use the object form {"decimal": "<text>"}.
//
// Codecs for common Go types (String, Int64, Decimal, UUID, Time, ...) are
// exported as Type values for use with types.New and types.TryGet.
//
// Marshal writes compact JSON in insertion order. MarshalCanonical writes
// RFC 8785 canonical JSON for fingerprints.
package jsonwire
