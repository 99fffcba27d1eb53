package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/vantage/internal/datasource/mockds"
	"github.com/roach88/vantage/internal/document"
	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/jsonwire"
)

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the resolver.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh mock source and a fresh resolution clock, so
// results are reproducible. A resolution failure is part of the result and
// is checked against expect.error; only a malformed scenario returns an
// error.
//
// Execution flow:
//  1. Build the mock source from the source section
//  2. Load the expression document
//  3. Resolve and flatten, recording every round
//  4. Check expectations
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	src, err := buildSource(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build source: %w", err)
	}

	e, err := document.FromYAML(&scenario.Expression, scenario.path, document.WithSource(src))
	if err != nil {
		return nil, fmt.Errorf("failed to load expression: %w", err)
	}

	result := NewResult()
	result.Preview = e.Preview()

	r := engine.NewResolver(
		engine.WithMaxRounds(scenario.MaxRounds),
		engine.WithLogger(h.logger),
		engine.WithClock(engine.NewClock()),
		engine.WithRoundHook(func(info engine.RoundInfo) {
			result.Trace = append(result.Trace, RoundEvent{
				Round:     info.Round,
				Deferred:  info.Deferred,
				Params:    info.Params,
				Remaining: info.Remaining,
			})
		}),
	)

	resolved, err := engine.Resolve(ctx, r, e)
	result.Rounds = len(result.Trace)
	result.Queries = src.Queries()
	if err != nil {
		result.Error = err.Error()
		var rt *engine.RuntimeError
		if errors.As(err, &rt) {
			result.ErrorCode = string(rt.Code)
		}
	} else {
		result.Resolved = resolved.Preview()
		result.Template = resolved.Template()
		result.Params = make([]jsonwire.Value, 0, resolved.Len())
		for _, p := range resolved.Params() {
			v, _ := p.AsScalar()
			if v == nil {
				v = jsonwire.NullValue{}
			}
			result.Params = append(result.Params, v)
		}
	}

	if err := EvaluateExpect(result, &scenario.Expect); err != nil {
		return nil, err
	}
	return result, nil
}

func buildSource(scenario *Scenario) (*mockds.Source[jsonwire.Value], error) {
	cfg := scenario.Source
	if cfg == nil {
		return mockds.New[jsonwire.Value](), nil
	}

	var opts []mockds.Option
	if cfg.Flatten {
		opts = append(opts, mockds.WithFlattening())
	}
	src := mockds.New[jsonwire.Value](opts...)

	for i := range cfg.Patterns {
		p := &cfg.Patterns[i]
		v, err := document.ValueFromYAML(&p.Result, scenario.path)
		if err != nil {
			return nil, fmt.Errorf("patterns[%d]: %w", i, err)
		}
		src.On(p.Query, v)
	}

	if cfg.Fallback != nil {
		v, err := document.ValueFromYAML(cfg.Fallback, scenario.path)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		src.Otherwise(v)
	}
	return src, nil
}
