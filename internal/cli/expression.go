package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vantage/internal/document"
	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
)

// PreviewResult is the output of the preview command.
type PreviewResult struct {
	Preview      string `json:"preview"`
	Placeholders int    `json:"placeholders"`
	Params       int    `json:"params"`
	Nested       bool   `json:"nested"`
	Deferred     bool   `json:"deferred"`
}

func (r PreviewResult) String() string { return r.Preview }

// FlattenResult is the output of the flatten command.
type FlattenResult struct {
	Template string              `json:"template"`
	Params   jsonwire.ArrayValue `json:"params"`
	Deferred bool                `json:"deferred"`
}

func (r FlattenResult) String() string {
	return formatFlat(r.Template, r.Params)
}

// ResolveResult is the output of the resolve command.
type ResolveResult struct {
	Preview  string              `json:"preview"`
	Resolved string              `json:"resolved"`
	Template string              `json:"template"`
	Params   jsonwire.ArrayValue `json:"params"`
	Rounds   int                 `json:"rounds"`
}

func (r ResolveResult) String() string {
	return r.Resolved + "\n" + formatFlat(r.Template, r.Params)
}

// formatFlat renders a template followed by one numbered line per param.
func formatFlat(template string, params jsonwire.ArrayValue) string {
	var b strings.Builder
	b.WriteString(template)
	for i, p := range params {
		fmt.Fprintf(&b, "\n  $%d = %s", i+1, p)
	}
	return b.String()
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Render an expression for humans",
		Long: `Render an expression document with every placeholder substituted.

Scalars render as JSON, nested expressions recursively and deferred
parameters as **deferred(). Nothing is resolved. The preview is for
reading only and is never safe to execute.

Example:
  vantage preview ./query.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			e, err := document.Load(args[0])
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(PreviewResult{
				Preview:      e.Preview(),
				Placeholders: e.Placeholders(),
				Params:       e.Len(),
				Nested:       e.HasNested(),
				Deferred:     e.HasDeferred(),
			})
		},
	}
}

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flatten <file>",
		Short: "Collapse nested expressions without resolving",
		Long: `Collapse nested expressions into one template and one flat
parameter list. Deferred parameters are kept in place, unresolved.

Example:
  vantage flatten ./query.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			e, err := document.Load(args[0])
			if err != nil {
				return f.Fail(err)
			}
			flat := engine.Flatten(e)
			params, _ := document.Encode(flat).Get("params")
			return f.Success(FlattenResult{
				Template: flat.Template(),
				Params:   params.(jsonwire.ArrayValue),
				Deferred: flat.HasDeferred(),
			})
		},
	}
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve deferred parameters and flatten",
		Long: `Run every deferred parameter in rounds until none remain, then
flatten. Deferred queries in the document fail to load here; use exec to
run them against a database.

Exit codes:
  0 - Resolved
  1 - A deferred parameter failed or the round limit was reached
  2 - The document could not be loaded

Example:
  vantage resolve ./query.yaml --max-rounds 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			e, err := document.Load(args[0])
			if err != nil {
				return f.Fail(err)
			}

			rounds := 0
			r := rootOpts.resolver(cmd, engine.WithRoundHook(func(info engine.RoundInfo) {
				rounds = info.Round
				f.VerboseLog("round %d: %d deferred, %d remaining", info.Round, info.Deferred, info.Remaining)
			}))

			resolved, err := engine.Resolve(cmd.Context(), r, e)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(ResolveResult{
				Preview:  e.Preview(),
				Resolved: resolved.Preview(),
				Template: resolved.Template(),
				Params:   scalars(resolved),
				Rounds:   rounds,
			})
		},
	}
}

// scalars lists the parameter values of a resolved expression.
func scalars(e expr.Expression[jsonwire.Value]) jsonwire.ArrayValue {
	out := make(jsonwire.ArrayValue, 0, e.Len())
	for _, p := range e.Params() {
		v, _ := p.AsScalar()
		if v == nil {
			v = jsonwire.NullValue{}
		}
		out = append(out, v)
	}
	return out
}
