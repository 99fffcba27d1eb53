// Package cborwire is the CBOR wire system, using the tag conventions of
// SurrealDB: tag 6 for NONE, tag 10 for decimals, tag 0 for datetimes,
// tag 37 for binary UUIDs and tag 8 for record ids.
//
// Values are raw encoded items. The variant of a value is read from its
// head without decoding the payload.
package cborwire
