// Package engine flattens expression trees and resolves their deferred
// parameters.
//
// Two cooperating passes run to a fixed point:
//
//  1. FlattenNested inlines every Nested parameter into its parent's
//     template, splicing the sub-expression's parameters into place.
//     This pass is structural and never fails.
//  2. Resolve calls every Deferred parameter left after flattening, in
//     placeholder order, replacing each with its result, then flattens
//     again. Rounds repeat until no Deferred parameter remains.
//
// ORDERING:
// Substitution is strictly positional. The Nth placeholder of a flattened
// template corresponds to the Nth parameter, so backends can translate
// placeholders into numbered bind markers.
//
// TERMINATION:
// Resolution is bounded by a round limit (DefaultMaxRounds unless
// configured with WithMaxRounds). Exceeding it means a deferred chain is
// cyclic or non-terminating; the resulting error is fatal, not retryable.
//
// Resolution works on copies. A failed resolution leaves the caller's
// expression untouched.
package engine
