package expr

import (
	"fmt"
	"slices"
	"strings"
)

// Placeholder is the positional parameter token in templates.
const Placeholder = "{}"

// Expression is a template with positional placeholders and one parameter
// per placeholder.
//
// INVARIANTS:
//   - Immutable once built; methods return copies
//   - The Nth placeholder corresponds to the Nth parameter
//
// A placeholder/parameter count mismatch is allowed by New: surplus
// placeholders stay literal and surplus parameters are ignored when the
// expression is rendered or flattened. Use Validate or NewStrict to reject
// mismatches up front.
type Expression[T any] struct {
	template string
	params   []Param[T]
}

// Expressive is implemented by anything that can produce an expression,
// such as query builders or Associated queries.
type Expressive[T any] interface {
	Expr() Expression[T]
}

// New creates an expression. The params slice is copied.
func New[T any](template string, params ...Param[T]) Expression[T] {
	return Expression[T]{template: template, params: slices.Clone(params)}
}

// NewStrict is New that fails with *MismatchError when the placeholder
// count of template differs from len(params), at any nesting depth.
func NewStrict[T any](template string, params ...Param[T]) (Expression[T], error) {
	e := New(template, params...)
	if err := e.Validate(); err != nil {
		return Expression[T]{}, err
	}
	return e, nil
}

// FromVec joins expressions with delim, nesting each one.
// FromVec(nil, ", ") is the empty expression.
func FromVec[T any](exprs []Expression[T], delim string) Expression[T] {
	placeholders := make([]string, len(exprs))
	params := make([]Param[T], len(exprs))
	for i, e := range exprs {
		placeholders[i] = Placeholder
		params[i] = Nested(e)
	}
	return Expression[T]{template: strings.Join(placeholders, delim), params: params}
}

// Template returns the template text.
func (e Expression[T]) Template() string {
	return e.template
}

// Params returns a copy of the parameter list.
func (e Expression[T]) Params() []Param[T] {
	return slices.Clone(e.params)
}

// Param returns the i-th parameter.
func (e Expression[T]) Param(i int) (Param[T], bool) {
	if i < 0 || i >= len(e.params) {
		return Param[T]{}, false
	}
	return e.params[i], true
}

// Len returns the number of parameters.
func (e Expression[T]) Len() int {
	return len(e.params)
}

// Placeholders returns the number of placeholder tokens in the template.
func (e Expression[T]) Placeholders() int {
	return strings.Count(e.template, Placeholder)
}

// Expr returns e, so every Expression is Expressive.
func (e Expression[T]) Expr() Expression[T] {
	return e
}

// Clone returns a deep copy. Nested expressions are copied recursively;
// Deferred callbacks are shared.
func (e Expression[T]) Clone() Expression[T] {
	out := Expression[T]{template: e.template, params: make([]Param[T], len(e.params))}
	for i, p := range e.params {
		if p.kind == KindNested {
			p.nested = p.nested.Clone()
		}
		out.params[i] = p
	}
	return out
}

// With returns a copy of e with parameter i replaced.
// Out-of-range indexes return e unchanged.
func (e Expression[T]) With(i int, p Param[T]) Expression[T] {
	if i < 0 || i >= len(e.params) {
		return e
	}
	out := Expression[T]{template: e.template, params: slices.Clone(e.params)}
	out.params[i] = p
	return out
}

// HasNested reports whether any top-level parameter is Nested.
func (e Expression[T]) HasNested() bool {
	return slices.ContainsFunc(e.params, func(p Param[T]) bool { return p.kind == KindNested })
}

// HasDeferred reports whether a Deferred parameter appears at any depth.
func (e Expression[T]) HasDeferred() bool {
	for _, p := range e.params {
		switch p.kind {
		case KindDeferred:
			return true
		case KindNested:
			if p.nested.HasDeferred() {
				return true
			}
		}
	}
	return false
}

// Validate checks placeholder and parameter counts recursively.
// The first mismatch is returned as a *MismatchError.
func (e Expression[T]) Validate() error {
	if n := e.Placeholders(); n != len(e.params) {
		return &MismatchError{Template: e.template, Placeholders: n, Parameters: len(e.params)}
	}
	for i, p := range e.params {
		if p.kind != KindNested {
			continue
		}
		if err := p.nested.Validate(); err != nil {
			return fmt.Errorf("param %d: %w", i, err)
		}
	}
	return nil
}

// Preview renders the expression for humans, substituting placeholders
// left to right. Scalars render with fmt, Nested expressions recursively
// and Deferred parameters as DeferredMarker. Surplus placeholders stay
// literal; surplus parameters are dropped.
//
// Preview is not safe for execution.
func (e Expression[T]) Preview() string {
	var b strings.Builder
	e.writePreview(&b)
	return b.String()
}

// String implements fmt.Stringer via Preview.
func (e Expression[T]) String() string {
	return e.Preview()
}

func (e Expression[T]) writePreview(b *strings.Builder) {
	parts := strings.Split(e.template, Placeholder)
	b.WriteString(parts[0])
	for i, part := range parts[1:] {
		if i < len(e.params) {
			e.params[i].writePreview(b)
		} else {
			b.WriteString(Placeholder)
		}
		b.WriteString(part)
	}
}

// MismatchError reports a template whose placeholder count differs from
// its parameter count.
type MismatchError struct {
	Template     string
	Placeholders int
	Parameters   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("template %q has %d placeholders but %d parameters",
		e.Template, e.Placeholders, e.Parameters)
}
