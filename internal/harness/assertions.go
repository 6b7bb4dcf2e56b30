package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Run      string // Run the assertion applied to
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (run %q)\n", e.Type, e.Run)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. Assertions against runs that failed with a registry error always
// fail, since there are no recorded rounds to inspect.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var msgs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

func evaluateAssertion(result *Result, a Assertion) error {
	run := result.Run(a.Run)
	if run == nil {
		return fmt.Errorf("unknown run %q", a.Run)
	}
	if run.Error != "" {
		return &AssertionError{
			Type:     a.Type,
			Run:      a.Run,
			Expected: "a completed run",
			Actual:   "run failed with " + run.Error,
		}
	}

	switch a.Type {
	case AssertCountsAt:
		return assertCountsAt(run, a)
	case AssertMonotonicCounts:
		return assertMonotonicCounts(run, a)
	case AssertTopWorkers:
		return assertTopWorkers(run, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertCountsAt checks the handling counts recorded after a.Round.
func assertCountsAt(run *RunOutcome, a Assertion) error {
	if a.Round > len(run.Trace) {
		return &AssertionError{
			Type:     a.Type,
			Run:      a.Run,
			Expected: fmt.Sprintf("counts after round %d", a.Round),
			Actual:   fmt.Sprintf("only %d rounds recorded", len(run.Trace)),
		}
	}

	got := run.Trace[a.Round-1]
	if !slices.Equal(got, a.Counts) {
		return &AssertionError{
			Type:     a.Type,
			Run:      a.Run,
			Expected: fmt.Sprintf("round %d counts %v", a.Round, a.Counts),
			Actual:   fmt.Sprintf("round %d counts %v", a.Round, got),
		}
	}
	return nil
}

// assertMonotonicCounts checks that no worker's count decreases between
// consecutive rounds.
func assertMonotonicCounts(run *RunOutcome, a Assertion) error {
	for r := 1; r < len(run.Trace); r++ {
		prev, cur := run.Trace[r-1], run.Trace[r]
		for w := range cur {
			if cur[w] < prev[w] {
				return &AssertionError{
					Type:     a.Type,
					Run:      a.Run,
					Expected: fmt.Sprintf("worker %d count never decreases", w),
					Actual:   fmt.Sprintf("%d after round %d, %d after round %d", prev[w], r, cur[w], r+1),
				}
			}
		}
	}
	return nil
}

// assertTopWorkers checks which two workers handled the most items.
// Ties are broken by the lower worker ID; the expected pair is unordered.
func assertTopWorkers(run *RunOutcome, a Assertion) error {
	got := topTwo(run.Counts)
	want := slices.Clone(a.Workers)
	slices.Sort(want)

	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     a.Type,
			Run:      a.Run,
			Expected: fmt.Sprintf("busiest workers %v", want),
			Actual:   fmt.Sprintf("busiest workers %v (counts %v)", got, run.Counts),
		}
	}
	return nil
}

// topTwo returns the IDs of the two largest counts, sorted ascending.
func topTwo(counts []uint64) []int {
	ids := make([]int, len(counts))
	for i := range ids {
		ids[i] = i
	}
	slices.SortStableFunc(ids, func(x, y int) int {
		switch {
		case counts[x] > counts[y]:
			return -1
		case counts[x] < counts[y]:
			return 1
		}
		return 0
	})
	if len(ids) > 2 {
		ids = ids[:2]
	}
	slices.Sort(ids)
	return ids
}
