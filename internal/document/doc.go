// Package document loads expressions from YAML, JSON and CUE files.
//
// A document is a template and its parameters:
//
//	template: "SELECT * FROM users WHERE {} AND status = {}"
//	params:
//	  - nested:
//	      template: "age > {}"
//	      params: [21]
//	  - scalar: active
//
// A parameter is one of:
//
//	<value>                          shorthand for {scalar: <value>}
//	{scalar: <value>}                any JSON value
//	{decimal: "19.99"}               exact decimal
//	{nested: <document>}             sub-expression
//	{deferred: {value: <value>}}     resolved later to a scalar
//	{deferred: {nested: <document>}} resolved later to a sub-expression
//	{deferred: {query: <document>}}  executed later on the configured source
//	{deferred: {fail: "message"}}    fails when resolved
//
// A deferred form may add chain: n to take n resolution rounds.
//
// YAML and JSON are read with yaml.v3 and CUE with the CUE Go API. Both
// keep object key order, and errors carry file:line:column positions.
package document
