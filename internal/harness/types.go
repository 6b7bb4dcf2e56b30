package harness

// RunOutcome is what one run of a scenario produced.
type RunOutcome struct {
	Name   string   `json:"name"`
	RunID  string   `json:"run_id,omitempty"`
	Mode   string   `json:"mode"`
	Rounds int      `json:"rounds"`
	Dampen bool     `json:"dampen"`
	Counts []uint64 `json:"counts,omitempty"`
	Score  uint64   `json:"score"`

	// Modulus is zero when the registry could not be built.
	Modulus int64 `json:"modulus,omitempty"`

	// Error is the registry error code if the run failed.
	Error string `json:"error,omitempty"`

	// Trace is the per-round counts read back from the store.
	Trace [][]uint64 `json:"-"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// SpecHash identifies the scenario's worker set.
	SpecHash string `json:"spec_hash"`

	// Runs holds one outcome per run step, in order.
	Runs []RunOutcome `json:"runs"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Runs:   []RunOutcome{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run returns the outcome of the named run, or nil.
func (r *Result) Run(name string) *RunOutcome {
	for i := range r.Runs {
		if r.Runs[i].Name == name {
			return &r.Runs[i]
		}
	}
	return nil
}
