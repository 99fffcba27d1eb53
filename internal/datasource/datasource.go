package datasource

import (
	"context"

	"github.com/roach88/vantage/internal/expr"
)

// Executor runs an expression against a backend.
type Executor[T any] interface {
	Execute(ctx context.Context, e expr.Expression[T]) (T, error)
}

// Deferrer turns an expression into a lazily executed parameter.
type Deferrer[T any] interface {
	Defer(e expr.Expression[T]) expr.DeferredFn[T]
}

// Source is a backend that can run expressions immediately or later.
type Source[T any] interface {
	Executor[T]
	Deferrer[T]
}

// Defer builds a DeferredFn that runs e on x when called.
// Backends without special deferral needs implement Deferrer with it.
func Defer[T any](x Executor[T], e expr.Expression[T]) expr.DeferredFn[T] {
	return expr.FromFunc(func(ctx context.Context) (T, error) {
		return x.Execute(ctx, e)
	})
}

// Param wraps e as a deferred parameter executed by x.
//
// Example:
//
//	total := datasource.Param[jsonwire.Value](orders, countQuery)
//	q := expr.New("SELECT * FROM users WHERE orders > {}", total)
func Param[T any](x Deferrer[T], e expr.Expression[T]) expr.Param[T] {
	return expr.Deferred(x.Defer(e))
}
