package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/keepaway/internal/ir"
)

// toCanonicalMap converts a Result to a map[string]any for canonical JSON
// serialization. This is required because ir.MarshalCanonical only handles
// plain maps, slices and primitives.
func (r *Result) toCanonicalMap(scenarioName string) map[string]any {
	runs := make([]any, len(r.Runs))
	for i, run := range r.Runs {
		m := map[string]any{
			"name":   run.Name,
			"mode":   run.Mode,
			"rounds": run.Rounds,
			"dampen": run.Dampen,
			"score":  run.Score,
		}
		if run.RunID != "" {
			m["run_id"] = run.RunID
		}
		if run.Counts != nil {
			m["counts"] = run.Counts
		}
		if run.Modulus != 0 {
			m["modulus"] = run.Modulus
		}
		if run.Error != "" {
			m["error"] = run.Error
		}
		runs[i] = m
	}

	out := map[string]any{
		"scenario_name": scenarioName,
		"spec_hash":     r.SpecHash,
		"pass":          r.Pass,
		"runs":          runs,
	}
	if len(r.Errors) > 0 {
		errs := make([]any, len(r.Errors))
		for i, e := range r.Errors {
			errs[i] = e
		}
		out["errors"] = errs
	}
	return out
}

// Snapshot renders a result as canonical JSON followed by a newline, the
// exact bytes stored in golden files.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	data, err := ir.MarshalCanonical(result.toCanonicalMap(scenarioName))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the result against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the result doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)

	return nil
}
