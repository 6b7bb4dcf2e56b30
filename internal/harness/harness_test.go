package harness

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepaway/internal/compiler"
	"github.com/roach88/keepaway/internal/testutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func uint64p(v uint64) *uint64 { return &v }

func intp(v int) *int { return &v }

// cascadeWorkers throw forward so that items are handled more than once
// per round.
func cascadeWorkers() []compiler.WorkerEntry {
	return []compiler.WorkerEntry{
		{ID: 0, Items: []int64{1, 2, 3}, Operation: "old + 1", Divisor: 2, IfTrue: 1, IfFalse: 2},
		{ID: 1, Items: []int64{}, Operation: "old * 3", Divisor: 3, IfTrue: 2, IfFalse: 0},
		{ID: 2, Items: []int64{4}, Operation: "old * old", Divisor: 5, IfTrue: 0, IfFalse: 1},
	}
}

func TestRunExampleScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/example.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	part1 := result.Run("part1")
	require.NotNil(t, part1)
	assert.Equal(t, "example-1", part1.RunID)
	assert.Equal(t, testutil.ExampleDampenedScore, part1.Score)
	assert.Equal(t, testutil.ExampleDampenedCounts(), part1.Counts)
	assert.Equal(t, int64(testutil.ExampleModulus), part1.Modulus)
	assert.Len(t, part1.Trace, 20)

	part2 := result.Run("part2")
	require.NotNil(t, part2)
	assert.Equal(t, "example-2", part2.RunID)
	assert.Equal(t, testutil.ExampleUndampenedScore, part2.Score)
	assert.Len(t, part2.Trace, 10_000)
	assert.Equal(t, part2.Counts, part2.Trace[len(part2.Trace)-1])
}

func TestRunNotesAndCUEShareSpecHash(t *testing.T) {
	notes, err := LoadScenario("testdata/scenarios/example.yaml")
	require.NoError(t, err)
	cue, err := LoadScenario("testdata/scenarios/example_cue.yaml")
	require.NoError(t, err)

	a, err := Run(notes)
	require.NoError(t, err)
	b, err := Run(cue)
	require.NoError(t, err)

	assert.Equal(t, a.SpecHash, b.SpecHash)
	assert.Equal(t, a.Run("part1").Counts, b.Run("part1").Counts)
}

func TestRunZeroRounds(t *testing.T) {
	s := &Scenario{
		Name:        "idle",
		Description: "no rounds",
		Workers:     cascadeWorkers(),
		Runs:        []RunStep{{Name: "none", Rounds: intp(0)}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	run := result.Run("none")
	require.NotNil(t, run)
	assert.Equal(t, []uint64{0, 0, 0}, run.Counts)
	assert.Equal(t, uint64(0), run.Score)
	assert.Empty(t, run.Trace)
}

func TestRunRegistryErrorExpected(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/solo.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	run := result.Run("solo")
	require.NotNil(t, run)
	assert.Equal(t, "INSUFFICIENT_WORKERS", run.Error)
	assert.Empty(t, run.RunID)
	assert.Equal(t, []uint64{3}, run.Counts)
}

func TestRunRegistryErrorUnexpected(t *testing.T) {
	s := &Scenario{
		Name:        "dup",
		Description: "duplicate ids without an expect clause",
		Workers: []compiler.WorkerEntry{
			{ID: 0, Items: []int64{1}, Operation: "old + 1", Divisor: 2, IfTrue: 0, IfFalse: 0},
			{ID: 0, Items: []int64{1}, Operation: "old + 1", Divisor: 2, IfTrue: 0, IfFalse: 0},
		},
		Runs: []RunStep{{Name: "a", Rounds: intp(1)}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{`run "a": unexpected error DUPLICATE_WORKER`}, result.Errors)
}

func TestRunExpectMismatches(t *testing.T) {
	modulus := int64(31)
	s := &Scenario{
		Name:        "wrong",
		Description: "every expectation is off",
		Workers:     cascadeWorkers(),
		Runs: []RunStep{
			{
				Name:   "five",
				Rounds: intp(5),
				Expect: &ExpectClause{
					Score:   uint64p(1),
					Counts:  []uint64{1, 2, 3},
					Modulus: &modulus,
				},
			},
			{
				Name:   "err",
				Rounds: intp(1),
				Expect: &ExpectClause{Error: "DUPLICATE_WORKER"},
			},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		`run "five": score = 360, want 1`,
		`run "five": counts = [3 18 20], want [1 2 3]`,
		`run "five": modulus = 30, want 31`,
		`run "err": expected error DUPLICATE_WORKER, run succeeded`,
	}, result.Errors)
}

func TestRunBadInlineWorkers(t *testing.T) {
	s := &Scenario{
		Name:        "bad",
		Description: "unparseable operation",
		Workers: []compiler.WorkerEntry{
			{ID: 0, Operation: "old ^ 2", Divisor: 2},
		},
		Runs: []RunStep{{Name: "a", Rounds: intp(1)}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load workers")
	assert.Contains(t, err.Error(), "workers[0].operation")
}

func TestRunIDsCountSuccessfulRunsOnly(t *testing.T) {
	s := &Scenario{
		Name:        "ids",
		Description: "run ids skip failed runs",
		Workers:     cascadeWorkers()[:1],
		Runs: []RunStep{
			{Name: "a", Rounds: intp(1), Expect: &ExpectClause{Error: "MALFORMED_SPEC"}},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Run("a").RunID)

	s = &Scenario{
		Name:        "ids",
		Description: "run ids are sequential",
		Workers:     cascadeWorkers(),
		Runs: []RunStep{
			{Name: "a", Rounds: intp(1)},
			{Name: "b", Rounds: intp(2)},
		},
	}
	result, err = Run(s)
	require.NoError(t, err)
	assert.Equal(t, "ids-1", result.Run("a").RunID)
	assert.Equal(t, "ids-2", result.Run("b").RunID)
}
