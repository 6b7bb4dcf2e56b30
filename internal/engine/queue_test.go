package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/keepaway/internal/ir"
)

func TestItemQueue_FIFO(t *testing.T) {
	q := newItemQueue([]ir.Item{1, 2})
	q.push(3)

	assert.Equal(t, 3, q.len())
	assert.Equal(t, []ir.Item{1, 2, 3}, q.takeAll())
	assert.Equal(t, 0, q.len())
}

func TestItemQueue_CopiesInitial(t *testing.T) {
	initial := []ir.Item{1, 2}
	q := newItemQueue(initial)
	initial[0] = 99

	assert.Equal(t, []ir.Item{1, 2}, q.snapshot())
}

func TestItemQueue_TakeAllDetaches(t *testing.T) {
	q := newItemQueue([]ir.Item{1, 2})
	taken := q.takeAll()

	// Pushing after a take must not write into the taken slice.
	q.push(7)
	q.push(8)

	assert.Equal(t, []ir.Item{1, 2}, taken)
	assert.Equal(t, []ir.Item{7, 8}, q.snapshot())
}

func TestItemQueue_SnapshotIsCopy(t *testing.T) {
	q := newItemQueue([]ir.Item{5})
	snap := q.snapshot()
	snap[0] = 6

	assert.Equal(t, []ir.Item{5}, q.snapshot())
}

func TestItemQueue_Empty(t *testing.T) {
	q := newItemQueue(nil)

	assert.Equal(t, 0, q.len())
	assert.Empty(t, q.takeAll())
	assert.Equal(t, []ir.Item{}, q.snapshot())
}
