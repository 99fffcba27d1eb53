package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// Record is an insertion-ordered mapping from field name to value.
//
// Records are the storage-agnostic row representation shared by every
// backend: query results are assembled into records, and entities convert
// to and from records field by field.
//
// INVARIANTS:
//   - Field names are unique
//   - Iteration order equals insertion order
//   - Overwriting an existing field keeps its original position
//
// The zero value is an empty record ready for use.
type Record[V any] struct {
	keys   []string
	values map[string]V
}

// Pair is a field name and value used for ordered construction.
type Pair[V any] struct {
	Key   string
	Value V
}

// P is a shorthand for Pair.
// Example: record.FromPairs(record.P("name", "cart"), record.P("owner", "sue"))
func P[V any](key string, value V) Pair[V] {
	return Pair[V]{Key: key, Value: value}
}

// New creates an empty record.
func New[V any]() *Record[V] {
	return &Record[V]{values: make(map[string]V)}
}

// WithCapacity creates an empty record sized for n fields.
func WithCapacity[V any](n int) *Record[V] {
	return &Record[V]{
		keys:   make([]string, 0, n),
		values: make(map[string]V, n),
	}
}

// FromPairs creates a record from pairs in the given order.
// Later duplicates overwrite earlier ones without moving them.
func FromPairs[V any](pairs ...Pair[V]) *Record[V] {
	r := WithCapacity[V](len(pairs))
	for _, p := range pairs {
		r.Set(p.Key, p.Value)
	}
	return r
}

// Len returns the number of fields.
func (r *Record[V]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Set inserts or overwrites a field.
// Returns the previous value and whether the field already existed.
func (r *Record[V]) Set(key string, value V) (V, bool) {
	if r.values == nil {
		r.values = make(map[string]V)
	}
	prev, existed := r.values[key]
	if !existed {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
	return prev, existed
}

// Get returns the value for key.
func (r *Record[V]) Get(key string) (V, bool) {
	if r == nil || r.values == nil {
		var zero V
		return zero, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record[V]) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key, keeping the order of the remaining fields.
// Returns the removed value and whether it was present.
func (r *Record[V]) Delete(key string) (V, bool) {
	v, ok := r.Get(key)
	if !ok {
		return v, false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns a copy of the field names in insertion order.
func (r *Record[V]) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// All iterates fields in insertion order.
func (r *Record[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy; values are copied by assignment.
func (r *Record[V]) Clone() *Record[V] {
	out := WithCapacity[V](r.Len())
	for k, v := range r.All() {
		out.Set(k, v)
	}
	return out
}

// Merge applies patch on top of r.
// Existing fields are overwritten in place, new fields are appended in
// patch order. The receiver is modified and returned for chaining.
func (r *Record[V]) Merge(patch *Record[V]) *Record[V] {
	for k, v := range patch.All() {
		r.Set(k, v)
	}
	return r
}

// MapValues converts every value with f, keeping field order.
func MapValues[V, U any](r *Record[V], f func(V) U) *Record[U] {
	out := WithCapacity[U](r.Len())
	for k, v := range r.All() {
		out.Set(k, f(v))
	}
	return out
}

// TryMapValues converts every value with f and stops at the first failure.
// The failing field name is returned alongside false.
func TryMapValues[V, U any](r *Record[V], f func(V) (U, bool)) (*Record[U], string, bool) {
	out := WithCapacity[U](r.Len())
	for k, v := range r.All() {
		u, ok := f(v)
		if !ok {
			return nil, k, false
		}
		out.Set(k, u)
	}
	return out, "", true
}

// Equal reports whether a and b hold the same fields in the same order,
// comparing values with eq.
func Equal[V any](a, b *Record[V], eq func(V, V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	if a.Len() == 0 {
		return true
	}
	for i, k := range a.keys {
		if b.keys[i] != k {
			return false
		}
		if !eq(a.values[k], b.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as a JSON object in insertion order.
func (r *Record[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range r.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
		i++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (r *Record[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}

	*r = Record[V]{values: make(map[string]V)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected string key, got %v", tok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("record key %q: %w", key, err)
		}
		r.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
