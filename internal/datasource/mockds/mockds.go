// Package mockds provides an in-memory data source for tests and demos.
//
// Queries are matched by their exact preview text. A source built with
// WithFlattening resolves Deferred parameters and inlines Nested ones
// before matching, so a pattern can be written against the final query.
package mockds

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/vantage/internal/datasource"
	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/expr"
)

// ErrNoPattern is returned when no pattern matches a query's preview.
var ErrNoPattern = errors.New("mockds: no pattern for query")

// Source answers queries from a fixed table of previews.
// It is safe for concurrent use.
type Source[T any] struct {
	mu       sync.RWMutex
	patterns map[string]T
	queries  []string
	fallback *T

	flatten  bool
	resolver *engine.Resolver
}

var _ datasource.Source[int] = (*Source[int])(nil)

// Option configures a Source.
type Option func(*options)

type options struct {
	flatten  bool
	resolver *engine.Resolver
}

// WithFlattening resolves and flattens each query before matching.
func WithFlattening() Option {
	return func(o *options) { o.flatten = true }
}

// WithResolver sets the resolver used by WithFlattening.
// It implies WithFlattening.
func WithResolver(r *engine.Resolver) Option {
	return func(o *options) {
		o.flatten = true
		o.resolver = r
	}
}

// New creates an empty source.
func New[T any](opts ...Option) *Source[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Source[T]{
		patterns: make(map[string]T),
		flatten:  o.flatten,
		resolver: o.resolver,
	}
}

// Static creates a source that answers every query with v.
func Static[T any](v T, opts ...Option) *Source[T] {
	return New[T](opts...).Otherwise(v)
}

// Otherwise sets the result for queries that match no pattern.
func (s *Source[T]) Otherwise(result T) *Source[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &result
	return s
}

// On registers the result for a query preview and returns s for chaining.
func (s *Source[T]) On(query string, result T) *Source[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[query] = result
	return s
}

// Execute matches e against the registered patterns.
func (s *Source[T]) Execute(ctx context.Context, e expr.Expression[T]) (T, error) {
	var zero T
	if s.flatten {
		resolved, err := engine.Resolve(ctx, s.resolver, e)
		if err != nil {
			return zero, err
		}
		e = resolved
	}

	query := e.Preview()

	s.mu.Lock()
	s.queries = append(s.queries, query)
	result, ok := s.patterns[query]
	if !ok && s.fallback != nil {
		result, ok = *s.fallback, true
	}
	s.mu.Unlock()

	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNoPattern, query)
	}
	return result, nil
}

// Defer returns e as a deferred parameter.
// Nothing runs until the parameter is resolved.
func (s *Source[T]) Defer(e expr.Expression[T]) expr.DeferredFn[T] {
	return datasource.Defer[T](s, e)
}

// Queries returns the previews executed so far, in order.
func (s *Source[T]) Queries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}
