package engine

import "github.com/roach88/keepaway/internal/ir"

// Throw is one routed item: the transformed (unreduced) value and the
// worker it goes to.
type Throw struct {
	From  ir.WorkerID `json:"from"`
	To    ir.WorkerID `json:"to"`
	Value ir.Item     `json:"value"`
}

// Worker holds one worker's queue and rules, and counts handled items.
//
// INVARIANTS:
//   - handled never decreases
//   - the queue is only mutated by the owning registry
type Worker struct {
	id        ir.WorkerID
	queue     *itemQueue
	operation ir.ArithmeticRule
	routing   ir.RoutingRule
	handled   uint64
}

// newWorker builds a worker from a validated spec. The spec's item slice is
// copied.
func newWorker(spec ir.WorkerSpec) *Worker {
	return &Worker{
		id:        spec.ID,
		queue:     newItemQueue(spec.Items),
		operation: spec.Operation,
		routing:   spec.Routing,
	}
}

// ID returns the worker's identifier.
func (w *Worker) ID() ir.WorkerID {
	return w.id
}

// Handled returns how many items this worker has inspected and routed.
func (w *Worker) Handled() uint64 {
	return w.handled
}

// Items returns a copy of the worker's queue, front first.
func (w *Worker) Items() []ir.Item {
	return w.queue.snapshot()
}

// InspectAndRoute processes every item currently queued, in order.
//
// The whole queue is taken first, so anything pushed to this worker while
// the returned throws are delivered waits for the next visit. For each item
// the arithmetic rule is applied, the result is divided by 3 if dampen is
// set (truncating toward zero), and the target is chosen from that
// unreduced value.
func (w *Worker) InspectAndRoute(dampen bool) []Throw {
	return w.inspectAndRoute(dampen, nil)
}

// inspectAndRoute appends the throws to dst so the registry can reuse one
// buffer across visits.
func (w *Worker) inspectAndRoute(dampen bool, dst []Throw) []Throw {
	for _, item := range w.queue.takeAll() {
		v := w.operation.Evaluate(item)
		if dampen {
			v /= 3
		}
		dst = append(dst, Throw{From: w.id, To: w.routing.TargetFor(v), Value: v})
		w.handled++
	}
	return dst
}
