// Package testutil provides deterministic worker fixtures shared by tests.
package testutil

import (
	"fmt"

	"github.com/roach88/keepaway/internal/ir"
)

// ExampleNotes is the four-worker example in the notes format.
const ExampleNotes = `Monkey 0:
  Starting items: 79, 98
  Operation: new = old * 19
  Test: divisible by 23
    If true: throw to monkey 2
    If false: throw to monkey 3

Monkey 1:
  Starting items: 54, 65, 75, 74
  Operation: new = old + 6
  Test: divisible by 19
    If true: throw to monkey 2
    If false: throw to monkey 0

Monkey 2:
  Starting items: 79, 60, 97
  Operation: new = old * old
  Test: divisible by 13
    If true: throw to monkey 1
    If false: throw to monkey 3

Monkey 3:
  Starting items: 74
  Operation: new = old + 3
  Test: divisible by 17
    If true: throw to monkey 0
    If false: throw to monkey 1
`

// Known results for ExampleSpecs.
const (
	// ExampleModulus is 23 * 19 * 13 * 17.
	ExampleModulus ir.Item = 96577

	// ExampleDampenedScore is the score after 20 dampened rounds.
	ExampleDampenedScore uint64 = 10605

	// ExampleUndampenedScore is the score after 10,000 undampened rounds.
	ExampleUndampenedScore uint64 = 2713310158
)

// ExampleDampenedCounts are the handling counts after 20 dampened rounds.
func ExampleDampenedCounts() []uint64 {
	return []uint64{101, 95, 7, 105}
}

// ExampleUndampenedCounts are the handling counts after 10,000 undampened
// rounds.
func ExampleUndampenedCounts() []uint64 {
	return []uint64{52166, 47830, 1938, 52013}
}

// ExampleSpecs returns a fresh copy of the four-worker example.
func ExampleSpecs() []ir.WorkerSpec {
	return []ir.WorkerSpec{
		Spec(0, []ir.Item{79, 98}, "old * 19", 23, 2, 3),
		Spec(1, []ir.Item{54, 65, 75, 74}, "old + 6", 19, 2, 0),
		Spec(2, []ir.Item{79, 60, 97}, "old * old", 13, 1, 3),
		Spec(3, []ir.Item{74}, "old + 3", 17, 0, 1),
	}
}

// Spec builds a worker spec. Panics if op does not parse; fixtures are
// expected to be valid.
func Spec(id ir.WorkerID, items []ir.Item, op string, divisor ir.Item, ifTrue, ifFalse ir.WorkerID) ir.WorkerSpec {
	rule, err := ir.ParseArithmeticRule(op)
	if err != nil {
		panic(fmt.Sprintf("testutil.Spec: %v", err))
	}
	return ir.WorkerSpec{
		ID:        id,
		Items:     items,
		Operation: rule,
		Routing:   ir.RoutingRule{Divisor: divisor, IfTrue: ifTrue, IfFalse: ifFalse},
	}
}

// Always builds a worker that adds zero and always throws to target.
// Both branches point at target; the divisor 97 only keeps small item
// values unchanged by reduction.
func Always(id ir.WorkerID, items []ir.Item, target ir.WorkerID) ir.WorkerSpec {
	return Spec(id, items, "old + 0", 97, target, target)
}

// TotalItems counts the items across all specs.
func TotalItems(specs []ir.WorkerSpec) int {
	total := 0
	for _, s := range specs {
		total += len(s.Items)
	}
	return total
}
