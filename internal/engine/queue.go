package engine

import "github.com/roach88/keepaway/internal/ir"

// itemQueue is a worker's FIFO queue of items.
//
// The queue is owned by exactly one worker and mutated only from the
// registry's Step, so it carries no lock. Items are plain values: pushing
// copies, and takeAll transfers the backing array to the caller.
type itemQueue struct {
	items []ir.Item
}

// newItemQueue creates a queue holding a copy of initial, front first.
func newItemQueue(initial []ir.Item) *itemQueue {
	items := make([]ir.Item, len(initial), max(len(initial), 8))
	copy(items, initial)
	return &itemQueue{items: items}
}

// push appends an item to the back of the queue.
func (q *itemQueue) push(v ir.Item) {
	q.items = append(q.items, v)
}

// takeAll removes and returns every queued item in order, leaving the queue
// empty. Items pushed afterwards land in a fresh backing array, so the
// returned slice is never written to again by the queue.
func (q *itemQueue) takeAll() []ir.Item {
	taken := q.items
	q.items = nil
	return taken
}

// len returns the current queue length.
func (q *itemQueue) len() int {
	return len(q.items)
}

// snapshot returns a copy of the queued items, front first.
func (q *itemQueue) snapshot() []ir.Item {
	out := make([]ir.Item, len(q.items))
	copy(out, q.items)
	return out
}
