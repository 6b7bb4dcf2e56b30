package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/keepaway/internal/ir"
)

// Registry owns every worker of one simulation run and drives its rounds.
//
// Thread-safety model: a Registry is owned by one goroutine. Step, RunRounds
// and Score must not be called concurrently. Accessors return copies and
// never alias internal state.
//
// INVARIANTS:
//   - workers[i].id == i for every i (dense, ascending visit order)
//   - modulus is the LCM of every divisor and never changes after New
//   - every routing target is a valid index into workers
type Registry struct {
	workers   []*Worker
	modulus   ir.Item
	dampen    bool
	clock     *Clock
	observers []Observer
	logger    *slog.Logger

	// scratch is reused across worker visits to avoid per-visit allocation.
	scratch []Throw
}

// Option configures a Registry.
type Option func(*Registry)

// WithDampening enables or disables the post-arithmetic division by 3.
//
// Default: disabled.
func WithDampening(dampen bool) Option {
	return func(r *Registry) {
		r.dampen = dampen
	}
}

// WithObserver registers observers notified of every throw and round.
// Observers are called synchronously in registration order.
func WithObserver(obs ...Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, obs...)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New validates specs and builds a registry.
//
// Specs may arrive in any order; workers are placed by ID. Construction
// fails with a DUPLICATE_WORKER error if two specs share an ID, and with a
// MALFORMED_SPEC error if IDs are not contiguous from 0, a divisor is not
// positive, a routing target is unknown, a rule is invalid, the divisors'
// least common multiple does not fit in an int64, or an operation could
// overflow an int64 for an item its worker may hold (see CheckWidth). On
// failure no registry is returned.
//
// The specs are copied; later changes by the caller have no effect.
func New(specs []ir.WorkerSpec, opts ...Option) (*Registry, error) {
	if err := validateSpecs(specs); err != nil {
		return nil, err
	}

	workers := make([]*Worker, len(specs))
	divisors := make([]ir.Item, len(specs))
	for _, spec := range specs {
		workers[spec.ID] = newWorker(spec)
		divisors[spec.ID] = spec.Routing.Divisor
	}

	modulus, err := ComputeModulus(divisors)
	if err != nil {
		return nil, newSpecListError(err.Error())
	}
	if err := CheckWidth(specs, modulus); err != nil {
		return nil, err
	}

	r := &Registry{
		workers: workers,
		modulus: modulus,
		clock:   NewClock(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logger.Debug("registry constructed",
		"workers", len(workers),
		"modulus", int64(modulus),
		"dampen", r.dampen)
	return r, nil
}

// validateSpecs checks every construction invariant and returns the first
// violation. Duplicates are reported before gaps, so a list with a repeated
// ID always fails as DUPLICATE_WORKER.
func validateSpecs(specs []ir.WorkerSpec) error {
	n := len(specs)
	seen := make(map[ir.WorkerID]bool, n)
	for _, spec := range specs {
		if seen[spec.ID] {
			return NewDuplicateWorkerError(spec.ID)
		}
		seen[spec.ID] = true
	}

	for _, spec := range specs {
		if spec.ID < 0 || int(spec.ID) >= n {
			return NewMalformedSpecError(spec.ID,
				fmt.Sprintf("worker ids must be contiguous from 0 to %d", n-1))
		}
	}

	for _, spec := range specs {
		if err := validateRules(spec, n); err != nil {
			return err
		}
	}
	return nil
}

func validateRules(spec ir.WorkerSpec, n int) error {
	op := spec.Operation
	if op.Op != ir.OpAdd && op.Op != ir.OpMultiply {
		return NewMalformedSpecError(spec.ID, fmt.Sprintf("unknown operator %v", op.Op))
	}
	for _, operand := range []ir.Operand{op.A, op.B} {
		if operand.Kind != ir.OperandOld && operand.Kind != ir.OperandConst {
			return NewMalformedSpecError(spec.ID, "operand must be old or a constant")
		}
	}

	rt := spec.Routing
	if rt.Divisor <= 0 {
		return NewMalformedSpecError(spec.ID, fmt.Sprintf("divisor %d must be positive", rt.Divisor))
	}
	for _, target := range []ir.WorkerID{rt.IfTrue, rt.IfFalse} {
		if target < 0 || int(target) >= n {
			return NewMalformedSpecError(spec.ID, fmt.Sprintf("routing target %d does not exist", target))
		}
	}
	return nil
}

// Step executes one round.
//
// Workers are visited in ascending ID order. Each visited worker's throws
// are reduced by the global modulus and appended to their targets' queues
// before the next worker is visited, so items thrown forward are handled
// again within this round and items thrown backward (or to self) wait for
// the next one.
func (r *Registry) Step() {
	round := r.clock.Next()

	for _, w := range r.workers {
		r.scratch = w.inspectAndRoute(r.dampen, r.scratch[:0])
		for _, t := range r.scratch {
			for _, obs := range r.observers {
				obs.ObserveThrow(round, t)
			}
			r.workers[t.To].queue.push(Reduce(t.Value, r.modulus))
		}
	}

	if len(r.observers) > 0 {
		counts := r.Counts()
		for _, obs := range r.observers {
			obs.ObserveRound(round, counts)
		}
	}
}

// RunRounds calls Step exactly n times. n == 0 is a no-op.
//
// Panics if n is negative.
func (r *Registry) RunRounds(n int) {
	if n < 0 {
		panic(fmt.Sprintf("engine: RunRounds called with negative count %d", n))
	}
	for i := 0; i < n; i++ {
		r.Step()
	}
	r.logger.Debug("rounds complete",
		"rounds", n,
		"total_rounds", r.clock.Current())
}

// Score returns the product of the two largest handling counts.
//
// Ties are irrelevant since the result is a product. Fails with an
// INSUFFICIENT_WORKERS error when the registry has fewer than two workers.
func (r *Registry) Score() (uint64, error) {
	if len(r.workers) < 2 {
		return 0, NewInsufficientWorkersError(len(r.workers))
	}

	var first, second uint64
	for _, w := range r.workers {
		switch h := w.handled; {
		case h > first:
			first, second = h, first
		case h > second:
			second = h
		}
	}
	return first * second, nil
}

// Len returns the number of workers.
func (r *Registry) Len() int {
	return len(r.workers)
}

// Modulus returns the global reduction modulus.
func (r *Registry) Modulus() ir.Item {
	return r.modulus
}

// Dampened reports whether the registry divides by 3 after each operation.
func (r *Registry) Dampened() bool {
	return r.dampen
}

// Round returns the number of rounds executed so far.
func (r *Registry) Round() int64 {
	return r.clock.Current()
}

// Worker returns the worker with the given ID, or nil if there is none.
func (r *Registry) Worker(id ir.WorkerID) *Worker {
	if id < 0 || int(id) >= len(r.workers) {
		return nil
	}
	return r.workers[id]
}

// Counts returns every worker's handling count, indexed by WorkerID.
func (r *Registry) Counts() []uint64 {
	counts := make([]uint64, len(r.workers))
	for i, w := range r.workers {
		counts[i] = w.handled
	}
	return counts
}

// Queues returns a copy of every worker's queue, indexed by WorkerID.
func (r *Registry) Queues() [][]ir.Item {
	queues := make([][]ir.Item, len(r.workers))
	for i, w := range r.workers {
		queues[i] = w.queue.snapshot()
	}
	return queues
}

// ItemCount returns the total number of items held by all workers.
func (r *Registry) ItemCount() int {
	total := 0
	for _, w := range r.workers {
		total += w.queue.len()
	}
	return total
}
