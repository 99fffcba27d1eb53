package types

import (
	"fmt"

	"github.com/roach88/vantage/internal/record"
)

// System describes a wire format: its name and how to recover a variant
// from an untyped wire value.
//
// A System is immutable after construction and safe for concurrent use.
type System[W any, V Variant] struct {
	name  string
	sniff func(W) (V, bool)
}

// NewSystem creates a wire system.
// sniff reports the variant of a wire value, or false when the value
// carries no recognizable tag.
func NewSystem[W any, V Variant](name string, sniff func(W) (V, bool)) *System[W, V] {
	return &System[W, V]{name: name, sniff: sniff}
}

// Name returns the system name (e.g. "json", "cbor").
func (s *System[W, V]) Name() string {
	return s.name
}

// Sniff reports the variant a wire value would be tagged with.
func (s *System[W, V]) Sniff(w W) (V, bool) {
	return s.sniff(w)
}

// FromWire wraps an untyped wire value, tagging it with the sniffed variant.
// Values the sniffer does not recognize stay untagged.
func (s *System[W, V]) FromWire(w W) Any[W, V] {
	v, ok := s.sniff(w)
	return Any[W, V]{value: w, variant: v, tagged: ok}
}

// DeriveRecord wraps every value of a wire record with FromWire.
func (s *System[W, V]) DeriveRecord(r *record.Record[W]) *record.Record[Any[W, V]] {
	return record.MapValues(r, s.FromWire)
}

// Any is a type-erased value of a wire system: the encoded value plus an
// optional variant tag.
//
// Values built with New are always tagged. Values recovered from raw wire
// data are tagged only when the wire value self-describes its variant.
type Any[W any, V Variant] struct {
	value   W
	variant V
	tagged  bool
}

// New erases c using t.
func New[W any, V Variant, C any](t Type[W, V, C], c C) Any[W, V] {
	return Any[W, V]{value: t.ToWire(c), variant: t.Variant(), tagged: true}
}

// Value returns the wire value without consuming the container.
func (a Any[W, V]) Value() W {
	return a.value
}

// IntoWire returns the wire value.
func (a Any[W, V]) IntoWire() W {
	return a.value
}

// Variant returns the tag, or false when the value is untagged.
func (a Any[W, V]) Variant() (V, bool) {
	return a.variant, a.tagged
}

// String renders the wire value.
func (a Any[W, V]) String() string {
	return fmt.Sprint(a.value)
}

// TryGet recovers a concrete value.
//
// A tagged value whose variant t does not accept is rejected without
// decoding. Untagged values and accepted variants are handed to t, which
// makes the final decision.
func TryGet[W any, V Variant, C any](a Any[W, V], t Type[W, V, C]) (C, bool) {
	if a.tagged && !accepts(t, a.variant) {
		var zero C
		return zero, false
	}
	return t.FromWire(a.value)
}

// StripRecord drops the tags of every value in r.
func StripRecord[W any, V Variant](r *record.Record[Any[W, V]]) *record.Record[W] {
	return record.MapValues(r, Any[W, V].IntoWire)
}
