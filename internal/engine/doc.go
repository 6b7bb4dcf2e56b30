// Package engine implements the keepaway round-based routing simulation.
//
// The engine owns a fixed set of workers. Each worker holds a FIFO queue of
// items and, when visited, inspects every item it holds, transforms it with
// its arithmetic rule, and throws it to another worker chosen by its routing
// rule. The registry counts how many items each worker handled.
//
// ARCHITECTURE:
//
// Single-Owner Registry:
// A Registry is constructed once from validated specs and mutated only by its
// own Step calls. There is no shared or process-wide state; every run
// configuration gets a freshly constructed registry.
//
// Round Processing Flow:
//  1. Step() visits workers in ascending WorkerID order
//  2. Each worker takes its whole queue and emits one Throw per item
//  3. Each thrown value is reduced by the global modulus
//  4. The reduced value is appended to the end of the target's queue
//  5. Visiting continues with the next worker in the same pass
//
// Because of step 5, an item thrown to a worker with a larger ID is handled
// again in the same round, while an item thrown to a smaller or equal ID
// waits for the next round. This ordering is load-bearing: running workers in
// parallel or in any other order changes the result.
//
// Value Bounding:
// The global modulus is the least common multiple of every routing divisor.
// Reducing a value by it preserves value mod d for each divisor d, so no
// routing decision changes while magnitudes stay bounded. Routing always
// looks at the unreduced value; reduction happens only on hand-off.
//
// The engine is designed for correctness and determinism, not throughput.
// It never blocks, spawns goroutines, or reads the wall clock.
package engine
