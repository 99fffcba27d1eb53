package types

import (
	"fmt"

	"github.com/roach88/vantage/internal/record"
)

// FieldError reports a record field that could not be converted.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// FieldSpec binds one entity field to a Type. Build with Field.
type FieldSpec[W any, V Variant, E any] struct {
	name    string
	variant V
	encode  func(E) Any[W, V]
	decode  func(Any[W, V], *E) bool
}

// Name returns the record field name.
func (f FieldSpec[W, V, E]) Name() string {
	return f.name
}

// Field describes how entity E stores one field of type C.
//
// Example:
//
//	types.Field("price", jsonwire.Decimal,
//	    func(p Product) *apd.Decimal { return p.Price },
//	    func(p *Product, d *apd.Decimal) { p.Price = d })
func Field[W any, V Variant, E any, C any](name string, t Type[W, V, C], get func(E) C, set func(*E, C)) FieldSpec[W, V, E] {
	return FieldSpec[W, V, E]{
		name:    name,
		variant: t.Variant(),
		encode: func(e E) Any[W, V] {
			return New(t, get(e))
		},
		decode: func(a Any[W, V], e *E) bool {
			c, ok := TryGet(a, t)
			if !ok {
				return false
			}
			set(e, c)
			return true
		},
	}
}

// Schema converts entities of type E to and from records.
//
// Fields are written in declaration order. Decoding ignores unknown fields
// and fails on the first missing or undecodable one.
type Schema[W any, V Variant, E any] struct {
	sys    *System[W, V]
	fields []FieldSpec[W, V, E]
}

// NewSchema creates a schema over sys.
func NewSchema[W any, V Variant, E any](sys *System[W, V], fields ...FieldSpec[W, V, E]) *Schema[W, V, E] {
	return &Schema[W, V, E]{sys: sys, fields: fields}
}

// Fields returns the field names in declaration order.
func (s *Schema[W, V, E]) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// ToRecord encodes e into a record of tagged values.
func (s *Schema[W, V, E]) ToRecord(e E) *record.Record[Any[W, V]] {
	r := record.WithCapacity[Any[W, V]](len(s.fields))
	for _, f := range s.fields {
		r.Set(f.name, f.encode(e))
	}
	return r
}

// FromRecord decodes an entity. Errors are *FieldError.
func (s *Schema[W, V, E]) FromRecord(r *record.Record[Any[W, V]]) (E, error) {
	var e E
	for _, f := range s.fields {
		a, ok := r.Get(f.name)
		if !ok {
			var zero E
			return zero, &FieldError{Field: f.name, Reason: "missing"}
		}
		if !f.decode(a, &e) {
			var zero E
			return zero, &FieldError{
				Field:  f.name,
				Reason: fmt.Sprintf("cannot decode as %s", f.variant),
			}
		}
	}
	return e, nil
}

// ToWireRecord encodes e and strips the tags.
func (s *Schema[W, V, E]) ToWireRecord(e E) *record.Record[W] {
	return StripRecord(s.ToRecord(e))
}

// FromWireRecord derives tags with the schema's system, then decodes.
func (s *Schema[W, V, E]) FromWireRecord(r *record.Record[W]) (E, error) {
	return s.FromRecord(s.sys.DeriveRecord(r))
}
