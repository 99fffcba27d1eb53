package engine

import (
	"strings"

	"github.com/roach88/vantage/internal/expr"
)

// FlattenNested inlines every Nested parameter, at any depth, into one
// template and one parameter list.
//
// Sub-expressions are flattened first, so their templates are spliced in
// already flat and their parameters land at the positions of their
// placeholders. Scalar and Deferred parameters keep one placeholder each.
// Text between placeholders is preserved verbatim.
//
// Count mismatches are not re-validated: surplus placeholders are kept
// literally and surplus parameters are dropped. A surplus placeholder in a
// Nested sub-template is spliced in like any other and takes the next
// parent parameter, shifting the rest along:
// "{} and {}"[Nested("a {} {}", [x]), y] previews as "a x {} and y" but
// flattens to "a x y and {}".
//
// A tree without Nested parameters comes back unchanged.
func FlattenNested[T any](e expr.Expression[T]) expr.Expression[T] {
	if !e.HasNested() && e.Placeholders() == e.Len() {
		return e
	}

	parts := strings.Split(e.Template(), expr.Placeholder)
	params := make([]expr.Param[T], 0, e.Len())

	var b strings.Builder
	b.WriteString(parts[0])
	for i, part := range parts[1:] {
		p, ok := e.Param(i)
		switch {
		case !ok:
			b.WriteString(expr.Placeholder)
		case p.Kind() == expr.KindNested:
			nested, _ := p.AsNested()
			sub := FlattenNested(nested)
			b.WriteString(sub.Template())
			params = append(params, sub.Params()...)
		default:
			b.WriteString(expr.Placeholder)
			params = append(params, p)
		}
		b.WriteString(part)
	}

	return expr.New(b.String(), params...)
}

// Flatten is the structural-only flattening a backend may call when it
// knows the tree holds no Deferred parameters. It never fails.
func Flatten[T any](e expr.Expression[T]) expr.Expression[T] {
	return FlattenNested(e)
}
