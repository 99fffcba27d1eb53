package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/vantage/internal/datasource"
	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
)

var _ datasource.Source[jsonwire.Value] = (*Source)(nil)

// Query resolves, renders and runs e, returning one record per row.
// Returns an empty slice (not nil) when no rows match.
func (s *Source) Query(ctx context.Context, e expr.Expression[jsonwire.Value]) ([]*record.Record[jsonwire.Value], error) {
	query, args, err := s.prepare(ctx, e)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	return out, nil
}

// Execute runs e and returns the rows as a JSON array of objects.
func (s *Source) Execute(ctx context.Context, e expr.Expression[jsonwire.Value]) (jsonwire.Value, error) {
	rows, err := s.Query(ctx, e)
	if err != nil {
		return nil, err
	}
	return rowsValue(rows), nil
}

// Exec runs a statement that returns no rows.
// Returns the number of rows affected.
func (s *Source) Exec(ctx context.Context, e expr.Expression[jsonwire.Value]) (int64, error) {
	query, args, err := s.prepare(ctx, e)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec %q: %w", query, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec %q: rows affected: %w", query, err)
	}
	return n, nil
}

// Defer returns e as a deferred parameter.
//
// When called, the query yields:
//   - Scalar(value) for exactly one row with one column
//   - Scalar(null) for no rows
//   - Scalar(array of row objects) otherwise
func (s *Source) Defer(e expr.Expression[jsonwire.Value]) expr.DeferredFn[jsonwire.Value] {
	return expr.FromFunc(func(ctx context.Context) (jsonwire.Value, error) {
		rows, err := s.Query(ctx, e)
		if err != nil {
			return nil, err
		}
		switch {
		case len(rows) == 0:
			return jsonwire.NullValue{}, nil
		case len(rows) == 1 && rows[0].Len() == 1:
			for _, v := range rows[0].All() {
				return v, nil
			}
		}
		return rowsValue(rows), nil
	})
}

// prepare resolves Deferred parameters and renders e.
func (s *Source) prepare(ctx context.Context, e expr.Expression[jsonwire.Value]) (string, []any, error) {
	resolved, err := engine.Resolve(ctx, s.resolver, e)
	if err != nil {
		return "", nil, err
	}

	query, args, err := Render(resolved)
	if err != nil {
		return "", nil, err
	}

	if fp, err := datasource.Fingerprint(resolved); err == nil {
		s.logger.Debug("sqlite query",
			"fingerprint", fp,
			"sql", query,
			"args", len(args))
	}
	return query, args, nil
}

// scanRows reads every row into a record keyed by column name.
func scanRows(rows *sql.Rows) ([]*record.Record[jsonwire.Value], error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := []*record.Record[jsonwire.Value]{}
	for rows.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		r := record.WithCapacity[jsonwire.Value](len(cols))
		for i, col := range cols {
			v, err := jsonwire.FromGo(raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			r.Set(col, v)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func rowsValue(rows []*record.Record[jsonwire.Value]) jsonwire.ArrayValue {
	arr := make(jsonwire.ArrayValue, len(rows))
	for i, r := range rows {
		arr[i] = jsonwire.ObjectValue{Record: r}
	}
	return arr
}
