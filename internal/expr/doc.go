// Package expr provides composable, backend-agnostic query expressions.
//
// An Expression is a template containing positional "{}" placeholders plus
// an ordered list of parameters. Each parameter is one of:
//   - Scalar: a concrete value already in the wire type
//   - Nested: an embedded sub-expression with its own template and params
//   - Deferred: a shared callback producing a fresh parameter on demand
//
// Expressions are values. Building, mapping and flattening always produce
// new Expressions; a Deferred callback is the only thing copies share.
//
//	where := expr.New("age > {} AND status = {}", expr.Scalar(21), expr.Scalar(active))
//	query := expr.New("SELECT * FROM users WHERE {}", expr.Nested(where))
//	query.Preview() // SELECT * FROM users WHERE age > 21 AND status = "active"
//
// Preview is for logs and debugging only. Backends bind parameters from the
// flattened form produced by package engine.
package expr
