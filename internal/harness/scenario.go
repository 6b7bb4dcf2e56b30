package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/keepaway/internal/compiler"
	"github.com/roach88/keepaway/internal/engine"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Notes is a path to a worker file (notes, CUE or YAML, by extension).
	// Relative paths are resolved against the scenario file's directory.
	Notes string `yaml:"notes,omitempty"`

	// Workers is an inline worker list, used when Notes is empty.
	Workers []compiler.WorkerEntry `yaml:"workers,omitempty"`

	// Runs are executed in order, each on a fresh registry.
	Runs []RunStep `yaml:"runs"`

	// Assertions validate the recorded per-round counts.
	// Supported types: counts_at, monotonic_counts, top_workers
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// RunStep is one simulation of the scenario's workers.
type RunStep struct {
	// Name identifies the run within the scenario.
	Name string `yaml:"name"`

	// Mode selects a standard configuration ("dampened" or "undampened").
	// Mutually exclusive with Rounds and Dampen.
	Mode string `yaml:"mode,omitempty"`

	// Rounds is the number of rounds for a custom run.
	Rounds *int `yaml:"rounds,omitempty"`

	// Dampen enables division by 3 for a custom run.
	Dampen bool `yaml:"dampen,omitempty"`

	// Expect specifies the expected outcome. If nil, the run only has to
	// complete without error.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected run behavior. Only the fields that are
// set are checked.
type ExpectClause struct {
	Score   *uint64  `yaml:"score,omitempty"`
	Counts  []uint64 `yaml:"counts,omitempty"`
	Modulus *int64   `yaml:"modulus,omitempty"`

	// Error is the expected registry error code, e.g. "DUPLICATE_WORKER".
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the recorded per-round counts of one run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "counts_at": counts after Round equal Counts
	// - "monotonic_counts": counts never decrease from round to round
	// - "top_workers": the two busiest workers are Workers (ties go to the
	//   lower ID)
	Type string `yaml:"type"`

	// Run names the run the assertion applies to.
	Run string `yaml:"run"`

	// Round is the 1-based round (used by counts_at).
	Round int `yaml:"round,omitempty"`

	// Counts are the expected counts (used by counts_at).
	Counts []uint64 `yaml:"counts,omitempty"`

	// Workers are the expected busiest workers (used by top_workers).
	Workers []int `yaml:"workers,omitempty"`
}

// Assertion type constants.
const (
	AssertCountsAt        = "counts_at"
	AssertMonotonicCounts = "monotonic_counts"
	AssertTopWorkers      = "top_workers"
)

// resolve returns the run configuration for this step.
func (r RunStep) resolve() (engine.Mode, error) {
	if r.Mode != "" {
		return engine.ModeByName(r.Mode)
	}
	return engine.Mode{Name: "custom", Rounds: *r.Rounds, Dampen: r.Dampen}, nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative notes path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Notes != "" && !filepath.IsAbs(scenario.Notes) {
		scenario.Notes = filepath.Join(filepath.Dir(path), scenario.Notes)
	}
	if scenario.Notes != "" {
		if _, err := os.Stat(scenario.Notes); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: notes file not found: %s", scenario.Notes)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Notes paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Notes == "" && len(s.Workers) == 0:
		return fmt.Errorf("either notes or workers is required")
	case s.Notes != "" && len(s.Workers) > 0:
		return fmt.Errorf("notes and workers are mutually exclusive")
	}

	if len(s.Runs) == 0 {
		return fmt.Errorf("runs list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Runs))
	for i, run := range s.Runs {
		if run.Name == "" {
			return fmt.Errorf("runs[%d]: name is required", i)
		}
		if names[run.Name] {
			return fmt.Errorf("runs[%d]: duplicate run name %q", i, run.Name)
		}
		names[run.Name] = true

		if err := validateRunStep(i, &run); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, names); err != nil {
			return err
		}
	}

	return nil
}

func validateRunStep(index int, r *RunStep) error {
	if r.Mode != "" {
		if r.Rounds != nil || r.Dampen {
			return fmt.Errorf("runs[%d]: mode cannot be combined with rounds or dampen", index)
		}
		if _, err := engine.ModeByName(r.Mode); err != nil {
			return fmt.Errorf("runs[%d]: %w", index, err)
		}
		return nil
	}

	if r.Rounds == nil {
		return fmt.Errorf("runs[%d]: either mode or rounds is required", index)
	}
	if *r.Rounds < 0 {
		return fmt.Errorf("runs[%d]: rounds must be non-negative", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, runs map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if !runs[a.Run] {
		return fmt.Errorf("assertions[%d]: unknown run %q", index, a.Run)
	}

	switch a.Type {
	case AssertCountsAt:
		if a.Round < 1 {
			return fmt.Errorf("assertions[%d]: round must be at least 1 for counts_at", index)
		}
		if len(a.Counts) == 0 {
			return fmt.Errorf("assertions[%d]: counts is required for counts_at", index)
		}
	case AssertMonotonicCounts:
	case AssertTopWorkers:
		if len(a.Workers) != 2 {
			return fmt.Errorf("assertions[%d]: top_workers needs exactly two workers", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
