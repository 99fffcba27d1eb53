package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vantage/internal/document"
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool   `json:"valid"`
	Placeholders int    `json:"placeholders"`
	Params       int    `json:"params"`
	Deferred     int    `json:"deferred"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ expression is valid (%d params, %d deferred)", r.Params, r.Deferred)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an expression document without resolving it",
		Long: `Load an expression document and check that every template, nested
ones included, has as many placeholders as parameters.

Deferred parameters are counted but not run; their results are checked
when the expression resolves.

Exit codes:
  0 - Valid
  1 - Placeholder and parameter counts disagree
  2 - The document could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			// Documents with deferred queries validate without a database.
			e, err := document.Load(args[0], document.WithSource(unavailable{}))
			if err != nil {
				return f.Fail(err)
			}
			f.VerboseLog("loaded %s", args[0])

			result := ValidationResult{
				Valid:        true,
				Placeholders: e.Placeholders(),
				Params:       e.Len(),
				Deferred:     countDeferred(e),
			}
			if err := e.Validate(); err != nil {
				return f.Fail(err)
			}
			return f.Success(result)
		},
	}
}

// countDeferred counts Deferred parameters at every depth.
func countDeferred(e expr.Expression[jsonwire.Value]) int {
	n := 0
	for _, p := range e.Params() {
		switch p.Kind() {
		case expr.KindDeferred:
			n++
		case expr.KindNested:
			nested, _ := p.AsNested()
			n += countDeferred(nested)
		}
	}
	return n
}

// unavailable is a data source for documents that are only inspected.
type unavailable struct{}

var errNoDatabase = errors.New("no database: use exec to run deferred queries")

func (unavailable) Defer(expr.Expression[jsonwire.Value]) expr.DeferredFn[jsonwire.Value] {
	return expr.NewDeferred(func(context.Context) (expr.Param[jsonwire.Value], error) {
		return expr.Param[jsonwire.Value]{}, errNoDatabase
	})
}
