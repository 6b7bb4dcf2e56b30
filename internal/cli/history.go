package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/keepaway/internal/ir"
	"github.com/roach88/keepaway/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	SpecHash string
	Mode     string
	Dampen   bool
	MinScore uint64
}

// HistoryResult is the data payload of the history command.
type HistoryResult struct {
	Runs []ir.RunRecord `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs",
		Long: `List the runs stored in a run history database, oldest first.

Example:
  keepaway history --db ./runs.db
  keepaway history --db ./runs.db --spec-hash 0b10c179... --format json
  keepaway history --db ./runs.db --mode custom --dampen=false --min-score 1000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history (default $KEEPAWAY_DB)")
	cmd.Flags().StringVar(&opts.SpecHash, "spec-hash", "", "only list runs of this worker set")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "only list runs of this mode (dampened|undampened|custom)")
	cmd.Flags().BoolVar(&opts.Dampen, "dampen", false, "only list runs with (or, with =false, without) dampening")
	cmd.Flags().Uint64Var(&opts.MinScore, "min-score", 0, "only list runs scoring at least this much")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	db := opts.Database
	if db == "" {
		db = opts.Env.DB
	}
	if db == "" {
		_ = formatter.Error(ErrCodeNotFound, "no database: set --db or KEEPAWAY_DB", nil)
		return NewExitError(ExitCommandError, "no database: set --db or KEEPAWAY_DB")
	}

	st, err := store.Open(db)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filter := store.RunFilter{SpecHash: opts.SpecHash, Mode: opts.Mode}
	if cmd.Flags().Changed("dampen") {
		filter.Dampen = &opts.Dampen
	}
	if cmd.Flags().Changed("min-score") {
		filter.MinScore = &opts.MinScore
	}

	runs, err := st.ListRunsWhere(ctx, filter)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	formatter.VerboseLog("Found %d run(s) in %s", len(runs), db)

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs stored.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tMODE\tROUNDS\tDAMPEN\tSCORE\tSPEC")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%t\t%d\t%s\n",
			r.Seq, r.ID, r.Mode, r.Rounds, r.Dampen, r.Score, shortHash(r.SpecHash))
	}
	return tw.Flush()
}

// shortHash abbreviates a spec hash for table output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
