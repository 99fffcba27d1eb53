package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vantage/internal/document"
	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
	"github.com/roach88/vantage/internal/sqlite"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Database  string
	Statement bool
}

// QueryResult is the output of exec for a query.
type QueryResult struct {
	Rows []*record.Record[jsonwire.Value] `json:"rows"`
}

func (r QueryResult) String() string {
	if len(r.Rows) == 0 {
		return "(no rows)"
	}
	lines := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		lines[i] = jsonwire.ObjectValue{Record: row}.String()
	}
	return strings.Join(lines, "\n")
}

// StatementResult is the output of exec --statement.
type StatementResult struct {
	RowsAffected int64 `json:"rows_affected"`
}

func (r StatementResult) String() string {
	return fmt.Sprintf("%d row(s) affected", r.RowsAffected)
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <file>",
		Short: "Run an expression against a SQLite database",
		Long: `Resolve an expression document and run it against a SQLite database.

Deferred queries in the document run against the same database, so a
sub-select can feed the outer statement. The database is created if it
doesn't exist.

Example:
  vantage exec --db ./app.db ./adults.yaml
  vantage exec --db ./app.db --statement ./insert.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Statement, "statement", false, "run as a statement and report rows affected")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExec(opts *ExecOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd)

	logger.Info("opening database", "path", opts.Database)
	src, err := sqlite.Open(opts.Database,
		sqlite.WithResolver(opts.resolver(cmd, engine.WithRoundHook(func(info engine.RoundInfo) {
			f.VerboseLog("round %d: %d deferred, %d remaining", info.Round, info.Deferred, info.Remaining)
		}))),
		sqlite.WithLogger(logger),
	)
	if err != nil {
		_ = f.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	e, err := document.Load(path, document.WithSource(src))
	if err != nil {
		return f.Fail(err)
	}

	if opts.Statement {
		n, err := src.Exec(cmd.Context(), e)
		if err != nil {
			return f.Fail(err)
		}
		return f.Success(StatementResult{RowsAffected: n})
	}

	rows, err := src.Query(cmd.Context(), e)
	if err != nil {
		return f.Fail(err)
	}
	return f.Success(QueryResult{Rows: rows})
}
