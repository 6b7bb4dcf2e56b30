package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/keepaway/internal/engine"
	"github.com/roach88/keepaway/internal/ir"
	"github.com/roach88/keepaway/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Mode     string
	Rounds   int
	Dampen   bool
	Trace    bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunSummary is one simulated run in command output.
type RunSummary struct {
	ID      string     `json:"id,omitempty"`
	Part    int        `json:"part,omitempty"`
	Mode    string     `json:"mode"`
	Rounds  int        `json:"rounds"`
	Dampen  bool       `json:"dampen"`
	Modulus ir.Item    `json:"modulus"`
	Counts  []uint64   `json:"counts"`
	Score   uint64     `json:"score"`
	Trace   [][]uint64 `json:"trace,omitempty"`
}

// RunResult is the data payload of the run command.
type RunResult struct {
	SpecHash string       `json:"spec_hash"`
	Workers  int          `json:"workers"`
	Runs     []RunSummary `json:"runs"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <workers-file>",
		Short: "Simulate a worker file",
		Long: `Simulate the workers described in a notes, CUE or YAML file.

By default both standard configurations run on independent registries:
part 1 is 20 rounds with dampening, part 2 is 10,000 rounds without.
Use --mode to run only one of them, or --rounds (and --dampen) for a
custom run.

Each run is stored in the run history when --db (or KEEPAWAY_DB) is set.

Example:
  keepaway run ./notes.txt
  keepaway run --mode undampened --db ./runs.db ./workers.cue
  keepaway run --rounds 5 --dampen --trace --format json ./workers.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history (default $KEEPAWAY_DB)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "run a single standard mode (dampened|undampened)")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 0, "number of rounds for a custom run")
	cmd.Flags().BoolVar(&opts.Dampen, "dampen", false, "divide by 3 after each operation (custom run)")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "record per-round handling counts")

	return cmd
}

// selectModes returns the modes to run. Part numbers follow the standard
// reporting order; custom runs have part 0.
func (o *RunOptions) selectModes(cmd *cobra.Command) ([]engine.Mode, error) {
	custom := cmd.Flags().Changed("rounds")
	switch {
	case custom && o.Mode != "":
		return nil, errors.New("--mode cannot be combined with --rounds")
	case cmd.Flags().Changed("dampen") && !custom:
		return nil, errors.New("--dampen requires --rounds")
	case custom:
		if o.Rounds < 0 {
			return nil, fmt.Errorf("--rounds must not be negative (got %d)", o.Rounds)
		}
		return []engine.Mode{{Name: "custom", Rounds: o.Rounds, Dampen: o.Dampen}}, nil
	case o.Mode != "":
		m, err := engine.ModeByName(o.Mode)
		if err != nil {
			return nil, err
		}
		return []engine.Mode{m}, nil
	default:
		return engine.StandardModes(), nil
	}
}

func runSimulation(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	modes, err := opts.selectModes(cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	specs, err := LoadWorkers(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	specHash, err := ir.SpecHash(specs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash workers", err)
	}

	var st *store.Store
	if db := opts.database(); db != "" {
		logger.Info("opening run history", "path", db)
		st, err = store.Open(db)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}

	result := RunResult{SpecHash: specHash, Workers: len(specs)}
	for _, mode := range modes {
		summary, err := simulateMode(specs, mode, opts.Trace, logger)
		if err != nil {
			return outputSimulationError(formatter, mode, err)
		}

		if st != nil {
			summary.ID = runIDs.Generate()
			if err := persistRun(cmd.Context(), st, specHash, summary); err != nil {
				_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to store run", err)
			}
			logger.Info("run stored", "run_id", summary.ID, "mode", mode.Name)
		}

		formatter.VerboseLog("%s: %d rounds, counts %v, modulus %d", mode.Name, mode.Rounds, summary.Counts, summary.Modulus)
		result.Runs = append(result.Runs, summary)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	w := formatter.Writer
	for _, r := range result.Runs {
		if r.Part > 0 {
			fmt.Fprintf(w, "Part %d: %d\n", r.Part, r.Score)
		} else {
			fmt.Fprintf(w, "Score: %d\n", r.Score)
		}
		if opts.Trace {
			for i, counts := range r.Trace {
				fmt.Fprintf(w, "  round %d: %v\n", i+1, counts)
			}
		}
	}
	return nil
}

func (o *RunOptions) database() string {
	if o.Database != "" {
		return o.Database
	}
	return o.Env.DB
}

// simulateMode runs one mode on a fresh registry.
func simulateMode(specs []ir.WorkerSpec, mode engine.Mode, trace bool, logger *slog.Logger) (RunSummary, error) {
	simOpts := []engine.Option{engine.WithLogger(logger)}
	var recorder *engine.RoundRecorder
	if trace {
		recorder = engine.NewRoundRecorder()
		simOpts = append(simOpts, engine.WithObserver(recorder))
	}

	report, err := engine.Simulate(specs, mode, simOpts...)
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		Part:    slices.Index(engine.StandardModes(), mode) + 1,
		Mode:    report.Mode.Name,
		Rounds:  report.Mode.Rounds,
		Dampen:  report.Mode.Dampen,
		Modulus: report.Modulus,
		Counts:  report.Counts,
		Score:   report.Score,
	}
	if recorder != nil {
		summary.Trace = recorder.Trace()
	}
	return summary, nil
}

// persistRun writes one run to the history store.
func persistRun(ctx context.Context, st *store.Store, specHash string, s RunSummary) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rec := ir.RunRecord{
		ID:            s.ID,
		SpecHash:      specHash,
		Mode:          s.Mode,
		Rounds:        s.Rounds,
		Dampen:        s.Dampen,
		Modulus:       s.Modulus,
		Counts:        s.Counts,
		Score:         s.Score,
		EngineVersion: ir.EngineVersion,
		Trace:         s.Trace,
	}
	_, _, err := st.WriteRun(ctx, rec)
	return err
}

// outputLoadError reports a worker file that could not be loaded.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load workers", err)
}

// outputSimulationError reports a registry error. The registry code is
// used as the error code.
func outputSimulationError(formatter *OutputFormatter, mode engine.Mode, err error) error {
	code := ErrCodeGeneric
	var re *engine.RegistryError
	if errors.As(err, &re) {
		code = string(re.Code)
	}
	_ = formatter.Error(code, err.Error(), map[string]string{"mode": mode.Name})
	return WrapExitError(ExitFailure, fmt.Sprintf("%s run failed", mode.Name), err)
}
