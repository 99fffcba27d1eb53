package expr

import (
	"context"
)

// Map converts an expression to another value type.
//
// Scalars are converted with f, Nested expressions recursively. Deferred
// callbacks are wrapped so that their results are converted when called;
// the original callback stays shared.
func Map[T, U any](e Expression[T], f func(T) U) Expression[U] {
	out := Expression[U]{template: e.template, params: make([]Param[U], len(e.params))}
	for i, p := range e.params {
		out.params[i] = MapParam(p, f)
	}
	return out
}

// MapParam converts one parameter as Map does.
func MapParam[T, U any](p Param[T], f func(T) U) Param[U] {
	switch p.kind {
	case KindNested:
		return Nested(Map(p.nested, f))
	case KindDeferred:
		d := p.deferred
		return Deferred(NewDeferred(func(ctx context.Context) (Param[U], error) {
			res, err := d.Call(ctx)
			if err != nil {
				return Param[U]{}, err
			}
			return MapParam(res, f), nil
		}))
	default:
		return Scalar(f(p.scalar))
	}
}
