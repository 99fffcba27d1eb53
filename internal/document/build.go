package document

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/vantage/internal/datasource"
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
)

// Option configures document building.
type Option func(*builder)

// WithSource sets the data source for {deferred: {query: ...}} params.
func WithSource(src datasource.Deferrer[jsonwire.Value]) Option {
	return func(b *builder) { b.source = src }
}

type builder struct {
	source datasource.Deferrer[jsonwire.Value]
}

func newBuilder(opts []Option) *builder {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	paramForms    = []string{"scalar", "decimal", "nested", "deferred"}
	deferredForms = []string{"value", "nested", "query", "fail"}
)

// build converts a {template, params} node.
func (b *builder) build(n *node) (expr.Expression[jsonwire.Value], error) {
	var zero expr.Expression[jsonwire.Value]
	if n.kind != kindObject {
		return zero, errorf(ErrCodeTemplate, n.pos, "expression must be an object, got %s", n.describe())
	}

	tn, ok := n.field("template")
	if !ok {
		return zero, errorf(ErrCodeTemplate, n.pos, "template is required")
	}
	template, ok := tn.text()
	if !ok {
		return zero, errorf(ErrCodeTemplate, tn.pos, "template must be a string, got %s", tn.describe())
	}

	pn, ok := n.field("params")
	if !ok {
		return expr.New[jsonwire.Value](template), nil
	}
	if pn.kind != kindList {
		return zero, errorf(ErrCodeParams, pn.pos, "params must be a list, got %s", pn.describe())
	}

	params := make([]expr.Param[jsonwire.Value], 0, len(pn.items))
	for _, item := range pn.items {
		p, err := b.param(item)
		if err != nil {
			return zero, err
		}
		params = append(params, p)
	}
	return expr.New(template, params...), nil
}

func (b *builder) param(n *node) (expr.Param[jsonwire.Value], error) {
	if n.kind != kindObject {
		v, err := n.value()
		if err != nil {
			return expr.Param[jsonwire.Value]{}, err
		}
		return expr.Scalar(v), nil
	}

	form, body, err := single(n, paramForms)
	if err != nil {
		return expr.Param[jsonwire.Value]{}, err
	}

	switch form {
	case "scalar":
		v, err := body.value()
		if err != nil {
			return expr.Param[jsonwire.Value]{}, err
		}
		return expr.Scalar(v), nil
	case "decimal":
		d, err := decimal(body)
		if err != nil {
			return expr.Param[jsonwire.Value]{}, err
		}
		return expr.Scalar[jsonwire.Value](d), nil
	case "nested":
		e, err := b.build(body)
		if err != nil {
			return expr.Param[jsonwire.Value]{}, err
		}
		return expr.Nested(e), nil
	default:
		d, err := b.deferred(body)
		if err != nil {
			return expr.Param[jsonwire.Value]{}, err
		}
		return expr.Deferred(d), nil
	}
}

func (b *builder) deferred(n *node) (expr.DeferredFn[jsonwire.Value], error) {
	var zero expr.DeferredFn[jsonwire.Value]
	if n.kind != kindObject {
		return zero, errorf(ErrCodeDeferredForm, n.pos, "deferred must be an object, got %s", n.describe())
	}

	rounds := int64(1)
	payload := n
	if cn, ok := n.field("chain"); ok {
		rounds, ok = cn.integer()
		if !ok || rounds < 1 {
			return zero, errorf(ErrCodeDeferredForm, cn.pos, "chain must be a positive integer")
		}
		payload = without(n, "chain")
	}

	form, body, err := single(payload, deferredForms)
	if err != nil {
		err.Code = ErrCodeDeferredForm
		return zero, err
	}

	var d expr.DeferredFn[jsonwire.Value]
	switch form {
	case "value":
		v, err := body.value()
		if err != nil {
			return zero, err
		}
		d = expr.FromValue(v)
	case "nested":
		e, err := b.build(body)
		if err != nil {
			return zero, err
		}
		d = expr.FromExpr(e)
	case "query":
		if b.source == nil {
			return zero, errorf(ErrCodeNoSource, body.pos, "deferred query needs a data source")
		}
		e, err := b.build(body)
		if err != nil {
			return zero, err
		}
		d = b.source.Defer(e)
	default:
		msg, ok := body.text()
		if !ok {
			return zero, errorf(ErrCodeDeferredForm, body.pos, "fail must be a string message")
		}
		failure := errors.New(msg)
		d = expr.NewDeferred(func(context.Context) (expr.Param[jsonwire.Value], error) {
			return expr.Param[jsonwire.Value]{}, failure
		})
	}

	for i := int64(1); i < rounds; i++ {
		d = relay(d)
	}
	return d, nil
}

// relay yields next as a new Deferred, costing one extra round.
func relay(next expr.DeferredFn[jsonwire.Value]) expr.DeferredFn[jsonwire.Value] {
	return expr.NewDeferred(func(context.Context) (expr.Param[jsonwire.Value], error) {
		return expr.Deferred(next), nil
	})
}

func decimal(n *node) (jsonwire.Value, error) {
	var text string
	switch v := n.scalar.(type) {
	case string:
		text = v
	case json.Number:
		text = v.String()
	}
	if n.kind != kindScalar || text == "" {
		return nil, errorf(ErrCodeParamValue, n.pos, "decimal must be a string, got %s", n.describe())
	}

	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, errorf(ErrCodeParamValue, n.pos, "invalid decimal %q", text)
	}
	return jsonwire.DecimalValue(d), nil
}

// single returns the one key of an object node, which must be in allowed.
func single(n *node, allowed []string) (string, *node, *LoadError) {
	if n.fields.Len() != 1 {
		return "", nil, errorf(ErrCodeParamForm, n.pos,
			"expected exactly one of %s, got %d keys", strings.Join(allowed, ", "), n.fields.Len())
	}
	for k, v := range n.fields.All() {
		for _, a := range allowed {
			if k == a {
				return k, v, nil
			}
		}
		return "", nil, errorf(ErrCodeParamForm, v.pos,
			"unknown form %q, expected one of %s", k, strings.Join(allowed, ", "))
	}
	return "", nil, nil
}

// without returns a copy of an object node minus one field.
func without(n *node, key string) *node {
	out := &node{kind: kindObject, fields: n.fields.Clone(), pos: n.pos}
	out.fields.Delete(key)
	return out
}
