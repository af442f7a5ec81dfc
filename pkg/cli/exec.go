package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TechXTT/oraconsole"
	"github.com/TechXTT/oraconsole/internal/driver/sqldriver"
	"github.com/TechXTT/oraconsole/pkg/history"
	"github.com/TechXTT/oraconsole/pkg/session"
)

// NewExecCmd builds the `exec` command.
func NewExecCmd() *cobra.Command {
	var noLimit bool

	cmd := &cobra.Command{
		Use:   "exec SQL...",
		Short: "Run one statement and print its result sets",
		Example: `  oraconsole exec "SELECT * FROM user_tables"
  oraconsole exec --no-limit "SELECT * FROM all_objects"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			oraconsole.Init(sqldriver.NewOracleConnector(cfg.DSN()), session.WithLogger(logger))

			hist, err := history.Open(cfg.HistoryPath)
			if err != nil {
				logger.Warn("history unavailable", zap.Error(err))
				hist = nil
			}
			return runExec(cmd.Context(), cmd.OutOrStdout(), oraconsole.Registry(), hist, strings.Join(args, " "), noLimit)
		},
	}
	cmd.Flags().BoolVar(&noLimit, "no-limit", false, fmt.Sprintf("fetch every row instead of the first %d", session.DefaultRowLimit))
	return cmd
}

// runExec runs statement on a fresh session that is released on return.
func runExec(ctx context.Context, out io.Writer, reg *session.Registry, hist *history.Store, statement string, noLimit bool) error {
	if hist != nil && hist.Add(statement) {
		if err := hist.Save(); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
	}

	id, err := reg.Allocate(ctx)
	if err != nil {
		return err
	}
	defer reg.Release(id)

	var opts []session.ExecOption
	if noLimit {
		opts = append(opts, session.WithNoLimit())
	}
	res, err := reg.Execute(ctx, id, statement, opts...)
	if err != nil {
		return err
	}
	return printResult(out, res)
}

// printResult writes each result set as an aligned table, separated by
// blank lines, followed by the affected-row count when there is one.
func printResult(out io.Writer, res *session.Result) error {
	for i, set := range res.Data {
		if i > 0 {
			fmt.Fprintln(out)
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		names := make([]string, len(set.Metadata))
		for j, col := range set.Metadata {
			names[j] = col.Name
		}
		fmt.Fprintln(w, strings.Join(names, "\t"))
		for _, row := range set.Rows {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = formatValue(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "(%d rows)\n", len(set.Rows))
	}
	if res.RowsAffected != nil {
		fmt.Fprintf(out, "%d rows affected\n", *res.RowsAffected)
	}
	return nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprint(v)
	}
}
