package expr

import (
	"fmt"
	"strings"
)

// DeferredMarker is what Preview shows in place of a Deferred parameter.
const DeferredMarker = "**deferred()"

// Kind identifies the parameter variant.
type Kind int

const (
	KindScalar Kind = iota
	KindNested
	KindDeferred
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindNested:
		return "nested"
	case KindDeferred:
		return "deferred"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Param is one expression parameter: a Scalar, a Nested expression or a
// Deferred callback. The zero Param is the Scalar holding T's zero value.
type Param[T any] struct {
	kind     Kind
	scalar   T
	nested   Expression[T]
	deferred DeferredFn[T]
}

// Scalar wraps a concrete value.
func Scalar[T any](v T) Param[T] {
	return Param[T]{kind: KindScalar, scalar: v}
}

// Nested embeds a sub-expression.
func Nested[T any](e Expression[T]) Param[T] {
	return Param[T]{kind: KindNested, nested: e}
}

// Nest embeds anything Expressive.
func Nest[T any](x Expressive[T]) Param[T] {
	return Nested(x.Expr())
}

// Deferred wraps a callback resolved at execution time.
func Deferred[T any](d DeferredFn[T]) Param[T] {
	return Param[T]{kind: KindDeferred, deferred: d}
}

// Kind returns the variant.
func (p Param[T]) Kind() Kind {
	return p.kind
}

// AsScalar returns the scalar value.
func (p Param[T]) AsScalar() (T, bool) {
	if p.kind != KindScalar {
		var zero T
		return zero, false
	}
	return p.scalar, true
}

// AsNested returns the nested expression.
func (p Param[T]) AsNested() (Expression[T], bool) {
	if p.kind != KindNested {
		return Expression[T]{}, false
	}
	return p.nested, true
}

// AsDeferred returns the callback.
func (p Param[T]) AsDeferred() (DeferredFn[T], bool) {
	if p.kind != KindDeferred {
		return DeferredFn[T]{}, false
	}
	return p.deferred, true
}

// Preview renders the parameter as Expression.Preview would.
func (p Param[T]) Preview() string {
	var b strings.Builder
	p.writePreview(&b)
	return b.String()
}

func (p Param[T]) writePreview(b *strings.Builder) {
	switch p.kind {
	case KindNested:
		p.nested.writePreview(b)
	case KindDeferred:
		b.WriteString(DeferredMarker)
	default:
		fmt.Fprint(b, p.scalar)
	}
}
