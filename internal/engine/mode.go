package engine

import (
	"fmt"

	"github.com/roach88/keepaway/internal/ir"
)

// Mode is a run configuration: how many rounds, with or without dampening.
type Mode struct {
	Name   string `json:"name" yaml:"name"`
	Rounds int    `json:"rounds" yaml:"rounds"`
	Dampen bool   `json:"dampen" yaml:"dampen"`
}

// The two standard run configurations.
var (
	// ModeDampened runs 20 rounds dividing by 3 after every operation.
	ModeDampened = Mode{Name: "dampened", Rounds: 20, Dampen: true}

	// ModeUndampened runs 10,000 rounds without dampening; item values are
	// kept bounded by the global modulus alone.
	ModeUndampened = Mode{Name: "undampened", Rounds: 10_000, Dampen: false}
)

// StandardModes returns the standard configurations in reporting order.
func StandardModes() []Mode {
	return []Mode{ModeDampened, ModeUndampened}
}

// ModeByName looks up a standard mode.
func ModeByName(name string) (Mode, error) {
	for _, m := range StandardModes() {
		if m.Name == name {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("unknown mode %q: must be %q or %q",
		name, ModeDampened.Name, ModeUndampened.Name)
}

// Report is the outcome of one completed run.
type Report struct {
	Mode    Mode     `json:"mode"`
	Counts  []uint64 `json:"counts"`
	Score   uint64   `json:"score"`
	Modulus ir.Item  `json:"modulus"`
}

// Simulate builds a fresh registry from specs, runs mode.Rounds rounds and
// scores it.
//
// A fresh registry is built on every call, so the same specs can be simulated
// under several modes independently. Extra options are applied after the
// mode's dampening setting; the report's mode records the dampening that was
// actually applied.
func Simulate(specs []ir.WorkerSpec, mode Mode, opts ...Option) (*Report, error) {
	if mode.Rounds < 0 {
		return nil, fmt.Errorf("mode %q: rounds must not be negative (got %d)", mode.Name, mode.Rounds)
	}

	all := append([]Option{WithDampening(mode.Dampen)}, opts...)
	reg, err := New(specs, all...)
	if err != nil {
		return nil, err
	}

	reg.RunRounds(mode.Rounds)

	score, err := reg.Score()
	if err != nil {
		return nil, err
	}

	mode.Dampen = reg.Dampened()
	return &Report{
		Mode:    mode,
		Counts:  reg.Counts(),
		Score:   score,
		Modulus: reg.Modulus(),
	}, nil
}
