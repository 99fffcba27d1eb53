package types

import (
	"fmt"
)

// Variant is the closed enumeration of semantic categories a wire system
// distinguishes (Int, Float, String, Decimal, ...).
//
// Each wire system declares its own Variant type, usually a small integer
// enum with a String method.
type Variant interface {
	comparable
	fmt.Stringer
}

// Type is the capability a concrete Go type C needs to live in a wire
// system with wire value W and variants V.
//
// Implementations are usually stateless values exported by the wire system
// package (jsonwire.Int64, cborwire.Decimal, ...). Several Types may share
// one Variant; a String variant typically covers strings, URLs and UUIDs.
//
// CONTRACT:
//   - FromWire(ToWire(c)) must return c, true for every c
//   - FromWire must reject wire values it cannot decode (never panic)
type Type[W any, V Variant, C any] interface {
	// Variant identifies which semantic category C is encoded as.
	Variant() V

	// ToWire encodes c.
	ToWire(c C) W

	// FromWire decodes w, reporting false when w is not a C.
	FromWire(w W) (C, bool)
}

// acceptor is implemented by Types that decode from more than one variant.
// Nullable types accept both the inner variant and the null sentinel's.
type acceptor[V Variant] interface {
	Accepts(v V) bool
}

// accepts reports whether a value tagged v passes the variant gate for t.
func accepts[W any, V Variant, C any](t Type[W, V, C], v V) bool {
	if a, ok := t.(acceptor[V]); ok {
		return a.Accepts(v)
	}
	return t.Variant() == v
}

// funcType adapts a pair of functions into a Type.
type funcType[W any, V Variant, C any] struct {
	variant V
	encode  func(C) W
	decode  func(W) (C, bool)
}

func (f funcType[W, V, C]) Variant() V { return f.variant }

func (f funcType[W, V, C]) ToWire(c C) W { return f.encode(c) }

func (f funcType[W, V, C]) FromWire(w W) (C, bool) { return f.decode(w) }

// Func builds a Type from an encoder and decoder.
//
// Example:
//
//	var Email = types.Func(jsonwire.VariantString,
//	    func(e Email) jsonwire.Value { return jsonwire.String(e.String()) },
//	    parseEmail)
func Func[W any, V Variant, C any](variant V, encode func(C) W, decode func(W) (C, bool)) Type[W, V, C] {
	return funcType[W, V, C]{variant: variant, encode: encode, decode: decode}
}

// NullSentinel describes how a wire system spells "no value".
// Each wire system exports one for use with Nullable.
type NullSentinel[W any, V Variant] struct {
	// Variant is the tag the sniffer assigns to the sentinel.
	Variant V
	// Value is the encoded sentinel.
	Value W
	// New, when set, returns a fresh copy of Value. Wire types backed by
	// slices set it so encoded nils never share memory.
	New func() W
	// Is reports whether a wire value is the sentinel.
	Is func(W) bool
}

// nullable wraps a Type so that a nil pointer maps to the null sentinel.
type nullable[W any, V Variant, C any] struct {
	inner Type[W, V, C]
	null  NullSentinel[W, V]
}

// Nullable returns a Type for *C where nil encodes to the sentinel.
//
// Decoding the sentinel into *C always succeeds with (nil, true), even when
// decoding a present value would fail. Decoding the sentinel with the bare
// inner Type is left to that Type, which must reject it.
//
// The nullable Type reports the inner Variant, and its gate accepts both
// the inner variant and the sentinel's variant.
func Nullable[W any, V Variant, C any](inner Type[W, V, C], null NullSentinel[W, V]) Type[W, V, *C] {
	return nullable[W, V, C]{inner: inner, null: null}
}

func (n nullable[W, V, C]) Variant() V { return n.inner.Variant() }

func (n nullable[W, V, C]) Accepts(v V) bool {
	return v == n.null.Variant || accepts(n.inner, v)
}

func (n nullable[W, V, C]) ToWire(c *C) W {
	if c == nil {
		if n.null.New != nil {
			return n.null.New()
		}
		return n.null.Value
	}
	return n.inner.ToWire(*c)
}

func (n nullable[W, V, C]) FromWire(w W) (*C, bool) {
	if n.null.Is(w) {
		return nil, true
	}
	c, ok := n.inner.FromWire(w)
	if !ok {
		return nil, false
	}
	return &c, true
}
