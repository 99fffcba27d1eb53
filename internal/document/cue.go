package document

import (
	"encoding/json"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
)

// ParseCUE builds an expression from CUE source.
// The evaluated value must be concrete; definitions, constraints and
// references are resolved by CUE first.
func ParseCUE(data []byte, filename string, opts ...Option) (expr.Expression[jsonwire.Value], error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return expr.Expression[jsonwire.Value]{}, cueError(ErrCodeParseFailed, filename, err)
	}
	return FromCUE(v, opts...)
}

// FromCUE builds an expression from an evaluated CUE value.
func FromCUE(v cue.Value, opts ...Option) (expr.Expression[jsonwire.Value], error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return expr.Expression[jsonwire.Value]{}, cueError(ErrCodeBuildFailed, "", err)
	}
	tree, err := cueNode(v)
	if err != nil {
		return expr.Expression[jsonwire.Value]{}, err
	}
	return newBuilder(opts).build(tree)
}

func cueNode(v cue.Value) (*node, error) {
	pos := cuePos(v.Pos(), "")

	switch v.Kind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, cueError(ErrCodeBuildFailed, pos.File, err)
		}
		out := &node{kind: kindObject, fields: record.New[*node](), pos: pos}
		for iter.Next() {
			child, err := cueNode(iter.Value())
			if err != nil {
				return nil, err
			}
			out.fields.Set(iter.Label(), child)
		}
		return out, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, cueError(ErrCodeBuildFailed, pos.File, err)
		}
		out := &node{kind: kindList, pos: pos}
		for iter.Next() {
			child, err := cueNode(iter.Value())
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, child)
		}
		return out, nil

	case cue.NullKind:
		return &node{kind: kindScalar, pos: pos}, nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, cueError(ErrCodeBuildFailed, pos.File, err)
		}
		return &node{kind: kindScalar, scalar: b, pos: pos}, nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, cueError(ErrCodeBuildFailed, pos.File, err)
		}
		return &node{kind: kindScalar, scalar: s, pos: pos}, nil

	case cue.IntKind:
		if i, err := v.Int64(); err == nil {
			return &node{kind: kindScalar, scalar: i, pos: pos}, nil
		}
		fallthrough

	case cue.FloatKind:
		// Decimal keeps the literal exactly, including integers beyond int64.
		d, err := v.Decimal()
		if err != nil {
			return nil, cueError(ErrCodeBuildFailed, pos.File, err)
		}
		return &node{kind: kindScalar, scalar: json.Number(d.Text('f')), pos: pos}, nil
	}

	return nil, errorf(ErrCodeBuildFailed, pos, "unsupported CUE kind %s", v.Kind())
}

func cuePos(p token.Pos, fallback string) Position {
	if !p.IsValid() {
		return Position{File: fallback}
	}
	return Position{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// cueError extracts the first error and its position.
func cueError(code, filename string, err error) *LoadError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return errorf(code, Position{File: filename}, "%v", err)
	}

	first := errs[0]
	pos := Position{File: filename}
	if positions := errors.Positions(first); len(positions) > 0 {
		pos = cuePos(positions[0], filename)
	}
	return errorf(code, pos, "%v", first)
}
