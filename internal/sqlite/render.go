package sqlite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
)

// ErrDeferred is returned by Render when a Deferred parameter remains.
// Resolve the expression first, or use Execute which does.
var ErrDeferred = errors.New("sqlite: cannot render deferred parameter")

// Render converts an expression to parameterized SQL.
// Returns (sql, args, error).
//
// Nested parameters are flattened. Every placeholder becomes ?N in
// placeholder order and every scalar becomes one bind argument; the
// counts must match.
func Render(e expr.Expression[jsonwire.Value]) (string, []any, error) {
	flat := engine.Flatten(e)
	if flat.HasDeferred() {
		return "", nil, ErrDeferred
	}
	if err := flat.Validate(); err != nil {
		return "", nil, fmt.Errorf("render: %w", err)
	}

	parts := strings.Split(flat.Template(), expr.Placeholder)
	args := make([]any, 0, flat.Len())

	var b strings.Builder
	b.WriteString(parts[0])
	for i, part := range parts[1:] {
		p, _ := flat.Param(i)
		v, _ := p.AsScalar()
		arg, err := jsonwire.ToGo(v)
		if err != nil {
			return "", nil, fmt.Errorf("render param %d: %w", i, err)
		}
		args = append(args, arg)

		b.WriteByte('?')
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(part)
	}

	return b.String(), args, nil
}
