// Package datasource defines how expressions reach a backend.
//
// An Executor runs a finished expression and returns a wire value. A
// Deferrer wraps an expression in a DeferredFn so that the query runs
// during another expression's resolution instead of immediately. A
// Source is both.
//
// Associated binds an expression to the executor that owns it and to a
// converter for the result, so callers can fetch a typed value while the
// same query can still be nested into a larger expression.
//
// Fingerprint derives a content-addressed identity for a flattened query,
// shaped like the rest of the repository's domain-separated hashes:
//
//	SHA256("vantage/query/v1" + 0x00 + canonical-json(query))
package datasource
