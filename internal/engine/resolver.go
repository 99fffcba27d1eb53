package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/vantage/internal/expr"
)

// DefaultMaxRounds bounds deferred resolution unless WithMaxRounds says
// otherwise.
const DefaultMaxRounds = 10

// RoundInfo describes one completed resolution round.
type RoundInfo struct {
	// Seq identifies the resolution.
	Seq int64
	// Round is 1-based.
	Round int
	// Deferred is the number of callbacks invoked in this round.
	Deferred int
	// Params is the parameter count after re-flattening.
	Params int
	// Remaining is the number of Deferred parameters after re-flattening.
	Remaining int
}

// Resolver runs the flatten/resolve fixed-point loop.
//
// A Resolver holds configuration only and is safe for concurrent use;
// every resolution works on its own copy of the expression.
type Resolver struct {
	maxRounds int
	logger    *slog.Logger
	hook      func(RoundInfo)
	clock     *Clock
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxRounds sets the round limit. Values below 1 are ignored.
func WithMaxRounds(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxRounds = n
		}
	}
}

// WithLogger sets the logger for round diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRoundHook registers a function called after every round.
func WithRoundHook(h func(RoundInfo)) Option {
	return func(r *Resolver) {
		r.hook = h
	}
}

// WithClock sets the clock that numbers resolutions.
func WithClock(c *Clock) Option {
	return func(r *Resolver) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewResolver creates a resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		maxRounds: DefaultMaxRounds,
		logger:    slog.Default(),
		clock:     NewClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxRounds returns the configured round limit.
func (r *Resolver) MaxRounds() int {
	return r.maxRounds
}

// ResolveAndFlatten resolves e with a resolver built from opts.
func ResolveAndFlatten[T any](ctx context.Context, e expr.Expression[T], opts ...Option) (expr.Expression[T], error) {
	return Resolve(ctx, NewResolver(opts...), e)
}

// Resolve flattens e and invokes its Deferred parameters until none remain.
//
// Within a round callbacks run sequentially in placeholder order. Their
// results replace them in place and the expression is flattened again,
// since a result may be Nested or another Deferred. A chain that resolves
// to a Scalar after k results takes exactly k rounds.
//
// Errors:
//   - callback failure: *RuntimeError with ErrCodeDeferredFailed wrapping
//     the callback error
//   - round limit: *RuntimeError with ErrCodeRoundLimit (fatal)
//   - context cancellation between callbacks: ctx.Err(), wrapped
//
// e is never modified. A nil r uses default settings.
func Resolve[T any](ctx context.Context, r *Resolver, e expr.Expression[T]) (expr.Expression[T], error) {
	if r == nil {
		r = NewResolver()
	}
	seq := r.clock.Next()
	limiter := NewRoundLimiter(r.maxRounds)

	work := FlattenNested(e)
	for {
		pending := deferredPositions(work)
		if len(pending) == 0 {
			if limiter.Current() > 0 {
				r.logger.Debug("resolution complete",
					"seq", seq,
					"rounds", limiter.Current(),
					"params", work.Len())
			}
			return work, nil
		}

		if err := limiter.Check(); err != nil {
			rx := err.(*RoundsExceededError)
			r.logger.Error("deferred resolution exceeded max rounds",
				"seq", seq,
				"rounds", rx.Rounds,
				"max_rounds", rx.Limit,
				"remaining", len(pending))
			return expr.Expression[T]{}, NewRoundLimitError(seq, rx, len(pending))
		}
		round := limiter.Current()

		params := work.Params()
		for _, pos := range pending {
			if err := ctx.Err(); err != nil {
				return expr.Expression[T]{}, fmt.Errorf("resolve seq %d round %d: %w", seq, round, err)
			}
			d, _ := params[pos].AsDeferred()
			p, err := d.Call(ctx)
			if err != nil {
				r.logger.Debug("deferred parameter failed",
					"seq", seq,
					"round", round,
					"position", pos,
					"error", err)
				return expr.Expression[T]{}, NewDeferredError(seq, round, pos, err)
			}
			params[pos] = p
		}

		work = FlattenNested(expr.New(work.Template(), params...))

		info := RoundInfo{
			Seq:       seq,
			Round:     round,
			Deferred:  len(pending),
			Params:    work.Len(),
			Remaining: len(deferredPositions(work)),
		}
		r.logger.Debug("resolution round",
			"seq", info.Seq,
			"round", info.Round,
			"deferred", info.Deferred,
			"params", info.Params,
			"remaining", info.Remaining)
		if r.hook != nil {
			r.hook(info)
		}
	}
}

// deferredPositions lists the indexes of top-level Deferred parameters.
func deferredPositions[T any](e expr.Expression[T]) []int {
	var out []int
	for i := range e.Len() {
		p, _ := e.Param(i)
		if p.Kind() == expr.KindDeferred {
			out = append(out, i)
		}
	}
	return out
}
