// Package testutil provides deterministic fixtures for resolution tests.
package testutil

import (
	"context"
	"sync/atomic"

	"github.com/roach88/vantage/internal/expr"
)

// Counter records how many times a fixture callback ran.
// Safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// Calls returns the number of invocations so far.
func (c *Counter) Calls() int {
	return int(c.n.Load())
}

func (c *Counter) inc() int {
	return int(c.n.Add(1))
}

// Chain returns a deferred that needs exactly k rounds to resolve: the
// first k-1 calls each yield another Deferred link and the k-th yields
// final. Chain with k < 1 behaves as k == 1.
func Chain[T any](k int, final expr.Param[T]) (expr.DeferredFn[T], *Counter) {
	c := &Counter{}
	return link(c, 1, max(k, 1), final), c
}

func link[T any](c *Counter, i, k int, final expr.Param[T]) expr.DeferredFn[T] {
	return expr.NewDeferred(func(context.Context) (expr.Param[T], error) {
		c.inc()
		if i >= k {
			return final, nil
		}
		return expr.Deferred(link(c, i+1, k, final)), nil
	})
}

// Forever returns a deferred that never resolves: every call yields a
// fresh Deferred.
func Forever[T any]() (expr.DeferredFn[T], *Counter) {
	c := &Counter{}
	var next func() expr.DeferredFn[T]
	next = func() expr.DeferredFn[T] {
		return expr.NewDeferred(func(context.Context) (expr.Param[T], error) {
			c.inc()
			return expr.Deferred(next()), nil
		})
	}
	return next(), c
}

// Failing returns a deferred whose every call fails with err.
func Failing[T any](err error) (expr.DeferredFn[T], *Counter) {
	c := &Counter{}
	return expr.NewDeferred(func(context.Context) (expr.Param[T], error) {
		c.inc()
		return expr.Param[T]{}, err
	}), c
}

// Counting wraps d and counts its invocations.
func Counting[T any](d expr.DeferredFn[T]) (expr.DeferredFn[T], *Counter) {
	c := &Counter{}
	return expr.NewDeferred(func(ctx context.Context) (expr.Param[T], error) {
		c.inc()
		return d.Call(ctx)
	}), c
}
