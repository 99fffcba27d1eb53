// Package harness runs expression scenarios and checks their outcome.
//
// A scenario is a YAML file holding an expression document, an optional
// mock data source for deferred queries, and the expected result of
// resolving the expression.
//
// # Scenario Format
//
//	name: orders_for_active_users
//	description: "Deferred sub-select is resolved before matching"
//	max_rounds: 5
//	source:
//	  flatten: true
//	  patterns:
//	    - query: 'SELECT id FROM user WHERE status = "active"'
//	      result: [1, 2, 3]
//	expression:
//	  template: "SELECT * FROM orders WHERE user_id = ANY({})"
//	  params:
//	    - deferred:
//	        query: {template: "SELECT id FROM user WHERE status = {}", params: [active]}
//	expect:
//	  preview: "SELECT * FROM orders WHERE user_id = ANY(**deferred())"
//	  resolved: "SELECT * FROM orders WHERE user_id = ANY([1,2,3])"
//	  template: "SELECT * FROM orders WHERE user_id = ANY({})"
//	  params: [[1, 2, 3]]
//	  rounds: 1
//
// # Expectations
//
// Every expectation is optional, but a scenario needs at least one:
//
//   - preview: preview of the expression as loaded
//   - resolved: preview after resolution
//   - template: flat template after resolution
//   - params: flat parameters after resolution, compared as canonical JSON
//   - rounds: number of resolution rounds
//   - error: error code (DEFERRED_FAILED, ROUND_LIMIT) or a substring of
//     the error message; resolution must fail
//
// # Golden Files
//
// RunWithGolden snapshots the full result, including the per-round trace
// and the queries the mock source received, under testdata/golden.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
