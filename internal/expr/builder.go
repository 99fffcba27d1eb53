package expr

import (
	"fmt"
)

// Builder constructs expressions from loosely typed arguments.
//
// Arguments that are already a Param, Expression, Expressive or DeferredFn
// of the builder's type are used as is (expressions and Expressives are
// nested). A T is a Scalar. Anything else goes through the convert
// function, typically a wire system's FromGo.
type Builder[T any] struct {
	convert func(any) (T, error)
}

// NewBuilder creates a builder using convert for plain Go values.
func NewBuilder[T any](convert func(any) (T, error)) Builder[T] {
	return Builder[T]{convert: convert}
}

// Param converts one argument.
func (b Builder[T]) Param(arg any) (Param[T], error) {
	switch a := arg.(type) {
	case Param[T]:
		return a, nil
	case Expression[T]:
		return Nested(a), nil
	case DeferredFn[T]:
		return Deferred(a), nil
	case T:
		return Scalar(a), nil
	case Expressive[T]:
		return Nest(a), nil
	}
	if b.convert == nil {
		return Param[T]{}, fmt.Errorf("expr: cannot use %T as parameter", arg)
	}
	v, err := b.convert(arg)
	if err != nil {
		return Param[T]{}, err
	}
	return Scalar(v), nil
}

// Expr builds an expression from template and args.
func (b Builder[T]) Expr(template string, args ...any) (Expression[T], error) {
	params := make([]Param[T], len(args))
	for i, arg := range args {
		p, err := b.Param(arg)
		if err != nil {
			return Expression[T]{}, fmt.Errorf("argument %d: %w", i, err)
		}
		params[i] = p
	}
	return Expression[T]{template: template, params: params}, nil
}

// Must is Expr that panics on conversion failure.
// Use it for expressions built from literals.
func (b Builder[T]) Must(template string, args ...any) Expression[T] {
	e, err := b.Expr(template, args...)
	if err != nil {
		panic(err)
	}
	return e
}
