package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/keepaway/internal/compiler"
	"github.com/roach88/keepaway/internal/engine"
	"github.com/roach88/keepaway/internal/ir"
	"github.com/roach88/keepaway/internal/store"
)

// Harness is the test execution engine.
// It runs scenarios with deterministic run ids against a private store.
type Harness struct {
	store    *store.Store
	runIDs   engine.RunIDGenerator
	logger   *slog.Logger
	specs    []ir.WorkerSpec
	specHash string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the worker specs (notes file or inline list)
// 2. Execute every run step on a fresh registry and store it
// 3. Read each run back from the store and check its expect clause
// 4. Evaluate assertions against the stored per-round counts
//
// A returned error means the scenario could not be executed at all;
// expectation failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	specs, err := loadSpecs(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load workers: %w", err)
	}

	specHash, err := ir.SpecHash(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to hash workers: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		runIDs:   engine.NewSequenceGenerator(scenario.Name),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		specs:    specs,
		specHash: specHash,
	}

	ctx := context.Background()
	result := NewResult()
	result.SpecHash = specHash

	for i, step := range scenario.Runs {
		outcome, err := h.executeRun(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("run %d (%s): %w", i, step.Name, err)
		}
		result.Runs = append(result.Runs, *outcome)

		for _, msg := range checkExpect(step, outcome) {
			result.AddError(msg)
		}
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func loadSpecs(s *Scenario) ([]ir.WorkerSpec, error) {
	if s.Notes != "" {
		return compiler.LoadFile(s.Notes)
	}
	return compiler.SpecsFromEntries(s.Workers)
}

// executeRun simulates one run step. Registry errors become the outcome's
// Error code; anything else (store failures) is returned.
func (h *Harness) executeRun(ctx context.Context, step RunStep) (*RunOutcome, error) {
	mode, err := step.resolve()
	if err != nil {
		return nil, err
	}

	outcome := &RunOutcome{
		Name:   step.Name,
		Mode:   mode.Name,
		Rounds: mode.Rounds,
		Dampen: mode.Dampen,
	}

	recorder := engine.NewRoundRecorder()
	reg, err := engine.New(h.specs,
		engine.WithDampening(mode.Dampen),
		engine.WithObserver(recorder),
		engine.WithLogger(h.logger),
	)
	if err != nil {
		return withRegistryError(outcome, err)
	}

	reg.RunRounds(mode.Rounds)
	outcome.Modulus = int64(reg.Modulus())
	outcome.Counts = reg.Counts()

	score, err := reg.Score()
	if err != nil {
		return withRegistryError(outcome, err)
	}

	runID := h.runIDs.Generate()
	rec := ir.RunRecord{
		ID:            runID,
		SpecHash:      h.specHash,
		Mode:          mode.Name,
		Rounds:        mode.Rounds,
		Dampen:        mode.Dampen,
		Modulus:       reg.Modulus(),
		Counts:        outcome.Counts,
		Score:         score,
		EngineVersion: ir.EngineVersion,
		Trace:         recorder.Trace(),
	}
	if rec.Trace == nil {
		rec.Trace = [][]uint64{}
	}
	if _, _, err := h.store.WriteRun(ctx, rec); err != nil {
		return nil, err
	}

	stored, err := h.store.ReadRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read back run %s: %w", runID, err)
	}
	trace, err := h.store.ReadTrace(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read back trace %s: %w", runID, err)
	}

	outcome.RunID = stored.ID
	outcome.Counts = stored.Counts
	outcome.Score = stored.Score
	outcome.Trace = trace

	h.logger.Info("run completed",
		"run", step.Name,
		"run_id", runID,
		"mode", mode.Name,
		"score", score,
	)
	return outcome, nil
}

// withRegistryError records a registry error as the outcome's error code.
// Registry errors are results a scenario may expect; any other error is
// returned as is.
func withRegistryError(outcome *RunOutcome, err error) (*RunOutcome, error) {
	var re *engine.RegistryError
	if errors.As(err, &re) {
		outcome.Error = string(re.Code)
		return outcome, nil
	}
	return nil, err
}

// checkExpect compares an outcome with its step's expect clause and returns
// one message per mismatch.
func checkExpect(step RunStep, outcome *RunOutcome) []string {
	var msgs []string
	prefix := fmt.Sprintf("run %q", step.Name)

	if step.Expect == nil {
		if outcome.Error != "" {
			msgs = append(msgs, fmt.Sprintf("%s: unexpected error %s", prefix, outcome.Error))
		}
		return msgs
	}
	exp := step.Expect

	if exp.Error != outcome.Error {
		switch {
		case exp.Error == "":
			msgs = append(msgs, fmt.Sprintf("%s: unexpected error %s", prefix, outcome.Error))
		case outcome.Error == "":
			msgs = append(msgs, fmt.Sprintf("%s: expected error %s, run succeeded", prefix, exp.Error))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: expected error %s, got %s", prefix, exp.Error, outcome.Error))
		}
		return msgs
	}

	if exp.Score != nil && *exp.Score != outcome.Score {
		msgs = append(msgs, fmt.Sprintf("%s: score = %d, want %d", prefix, outcome.Score, *exp.Score))
	}
	if exp.Counts != nil && !slices.Equal(exp.Counts, outcome.Counts) {
		msgs = append(msgs, fmt.Sprintf("%s: counts = %v, want %v", prefix, outcome.Counts, exp.Counts))
	}
	if exp.Modulus != nil && *exp.Modulus != outcome.Modulus {
		msgs = append(msgs, fmt.Sprintf("%s: modulus = %d, want %d", prefix, outcome.Modulus, *exp.Modulus))
	}
	return msgs
}
