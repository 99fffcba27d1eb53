package expr

import (
	"context"
	"errors"
	"sync"
)

// ErrNilDeferred is returned when calling a zero DeferredFn.
var ErrNilDeferred = errors.New("expr: deferred function is nil")

// DeferredFn is a shared callback producing a parameter on demand.
//
// Copies of a DeferredFn refer to the same callback; copying an expression
// never duplicates the work behind it. Each Call runs the callback again
// unless it was wrapped with Once. Callbacks must be safe for concurrent
// use by multiple expressions.
type DeferredFn[T any] struct {
	fn *deferredFunc[T]
}

type deferredFunc[T any] struct {
	call func(ctx context.Context) (Param[T], error)
}

// NewDeferred wraps f. The result may be any Param kind, including another
// Deferred, which is resolved in a later round.
func NewDeferred[T any](f func(ctx context.Context) (Param[T], error)) DeferredFn[T] {
	return DeferredFn[T]{fn: &deferredFunc[T]{call: f}}
}

// Call runs the callback.
func (d DeferredFn[T]) Call(ctx context.Context) (Param[T], error) {
	if d.fn == nil || d.fn.call == nil {
		return Param[T]{}, ErrNilDeferred
	}
	return d.fn.call(ctx)
}

// Same reports whether d and other share one callback.
func (d DeferredFn[T]) Same(other DeferredFn[T]) bool {
	return d.fn != nil && d.fn == other.fn
}

// FromValue always yields Scalar(v).
func FromValue[T any](v T) DeferredFn[T] {
	return NewDeferred(func(context.Context) (Param[T], error) {
		return Scalar(v), nil
	})
}

// FromExpr always yields Nested(e).
func FromExpr[T any](e Expression[T]) DeferredFn[T] {
	return NewDeferred(func(context.Context) (Param[T], error) {
		return Nested(e), nil
	})
}

// FromFunc wraps a value-producing function, such as an API call.
func FromFunc[T any](f func(ctx context.Context) (T, error)) DeferredFn[T] {
	return NewDeferred(func(ctx context.Context) (Param[T], error) {
		v, err := f(ctx)
		if err != nil {
			return Param[T]{}, err
		}
		return Scalar(v), nil
	})
}

// FromCell reads c on every call and converts the value with conv.
// The cell lock is released before conv runs.
func FromCell[T, U any](c *Cell[U], conv func(U) T) DeferredFn[T] {
	return NewDeferred(func(context.Context) (Param[T], error) {
		return Scalar(conv(c.Get())), nil
	})
}

// Once memoises the first successful result of d. Failed calls are not
// cached and the next call retries. Concurrent first calls wait for one
// execution; a waiter whose ctx ends first returns ctx.Err().
func Once[T any](d DeferredFn[T]) DeferredFn[T] {
	var (
		mu      sync.Mutex
		done    bool
		result  Param[T]
		running chan struct{}
	)
	return NewDeferred(func(ctx context.Context) (Param[T], error) {
		for {
			mu.Lock()
			if done {
				mu.Unlock()
				return result, nil
			}
			if running == nil {
				break
			}
			wait := running
			mu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return Param[T]{}, ctx.Err()
			}
		}
		finished := make(chan struct{})
		running = finished
		mu.Unlock()

		var (
			p  Param[T]
			ok bool
		)
		defer func() {
			mu.Lock()
			if ok {
				result, done = p, true
			}
			running = nil
			mu.Unlock()
			close(finished)
		}()

		p, err := d.Call(ctx)
		if err != nil {
			return Param[T]{}, err
		}
		ok = true
		return p, nil
	})
}

// Cell is a mutex-guarded value shared between client code and the
// deferred callbacks that read it.
type Cell[U any] struct {
	mu sync.RWMutex
	v  U
}

// NewCell creates a cell holding v.
func NewCell[U any](v U) *Cell[U] {
	return &Cell[U]{v: v}
}

// Get returns the current value.
func (c *Cell[U]) Get() U {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Set replaces the value.
func (c *Cell[U]) Set(v U) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// Update replaces the value with f(current) atomically.
func (c *Cell[U]) Update(f func(U) U) {
	c.mu.Lock()
	c.v = f(c.v)
	c.mu.Unlock()
}
