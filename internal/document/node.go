package document

import (
	"encoding/json"

	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
)

type nodeKind int

const (
	kindScalar nodeKind = iota
	kindObject
	kindList
)

// node is a decoded source value with its position.
// YAML and CUE both decode into nodes before the expression is built.
type node struct {
	kind   nodeKind
	scalar any // nil, bool, int64, float64, json.Number or string
	fields *record.Record[*node]
	items  []*node
	pos    Position
}

func (n *node) describe() string {
	switch n.kind {
	case kindObject:
		return "object"
	case kindList:
		return "list"
	}
	switch n.scalar.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}

// value converts n to a JSON wire value.
func (n *node) value() (jsonwire.Value, error) {
	switch n.kind {
	case kindObject:
		obj := jsonwire.NewObject()
		for k, f := range n.fields.All() {
			v, err := f.value()
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	case kindList:
		arr := make(jsonwire.ArrayValue, len(n.items))
		for i, item := range n.items {
			v, err := item.value()
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	}
	v, err := jsonwire.FromGo(n.scalar)
	if err != nil {
		return nil, errorf(ErrCodeParamValue, n.pos, "%v", err)
	}
	return v, nil
}

// field returns the named field of an object node.
func (n *node) field(name string) (*node, bool) {
	if n.kind != kindObject {
		return nil, false
	}
	return n.fields.Get(name)
}

// text returns the string value of a scalar node.
func (n *node) text() (string, bool) {
	if n.kind != kindScalar {
		return "", false
	}
	s, ok := n.scalar.(string)
	return s, ok
}

// integer returns the integer value of a scalar node.
func (n *node) integer() (int64, bool) {
	if n.kind != kindScalar {
		return 0, false
	}
	switch v := n.scalar.(type) {
	case int64:
		return v, true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}
