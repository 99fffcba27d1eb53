// Package sqlite executes expressions against a SQLite database.
//
// Expressions are resolved and flattened, then rendered into SQL with
// numbered bind parameters:
//
//	SELECT * FROM users WHERE age > {} AND status = {}
//	->  SELECT * FROM users WHERE age > ?1 AND status = ?2
//
// Parameter values are never interpolated into the SQL text.
//
// Results come back as JSON wire values: a query yields an array of row
// objects whose fields keep the column order of the result set. Deferring
// a query yields its single value when the result is one row with one
// column, so a sub-select can be spliced into another query as a scalar.
package sqlite
