package datasource

import (
	"context"
	"fmt"

	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/types"
)

// Associated is an expression bound to its executor and a result converter.
//
// Get runs the query and converts the result. Expr returns the bare
// expression so an Associated can be nested into other queries; the
// association is only used when Get is called.
type Associated[T, R any] struct {
	e       expr.Expression[T]
	exec    Executor[T]
	convert func(T) (R, error)
}

// Associate binds e to exec with a result converter.
func Associate[T, R any](exec Executor[T], e expr.Expression[T], convert func(T) (R, error)) Associated[T, R] {
	return Associated[T, R]{e: e, exec: exec, convert: convert}
}

// Get executes the expression and converts the result.
func (a Associated[T, R]) Get(ctx context.Context) (R, error) {
	var zero R
	if a.exec == nil {
		return zero, fmt.Errorf("associated query %q: no executor", a.e.Preview())
	}
	raw, err := a.exec.Execute(ctx, a.e)
	if err != nil {
		return zero, fmt.Errorf("associated query %q: %w", a.e.Preview(), err)
	}
	out, err := a.convert(raw)
	if err != nil {
		return zero, fmt.Errorf("associated query %q: convert result: %w", a.e.Preview(), err)
	}
	return out, nil
}

// Expr returns the underlying expression.
func (a Associated[T, R]) Expr() expr.Expression[T] {
	return a.e
}

// Defer returns the query as a deferred parameter yielding the raw result.
func (a Associated[T, R]) Defer() expr.DeferredFn[T] {
	return Defer(a.exec, a.e)
}

func (a Associated[T, R]) String() string {
	return a.e.Preview()
}

// Decode returns a converter that decodes a wire result with t.
// The result is sniffed first so the variant gate applies.
//
// Example:
//
//	count := datasource.Associate(db, q, datasource.Decode(jsonwire.System, jsonwire.Int64))
func Decode[W any, V types.Variant, C any](sys *types.System[W, V], t types.Type[W, V, C]) func(W) (C, error) {
	return func(w W) (C, error) {
		c, ok := types.TryGet(sys.FromWire(w), t)
		if !ok {
			var zero C
			return zero, &types.FieldError{Field: "result", Reason: fmt.Sprintf("cannot decode as %s", t.Variant())}
		}
		return c, nil
	}
}
