package ir

import "fmt"

// WorkerID identifies a worker. IDs are dense and contiguous over 0..N-1
// within one simulation.
type WorkerID int

// Item is a value being routed between workers.
//
// Items have no identity beyond their value. The engine refuses worker sets
// whose operations could leave int64 between two reductions.
type Item int64

// WorkerSpec is the validated construction input for one worker.
type WorkerSpec struct {
	// ID is the worker's position in the ascending visit order.
	ID WorkerID `json:"id" yaml:"id"`

	// Items is the initial queue, front first.
	Items []Item `json:"items" yaml:"items"`

	// Operation transforms each item when it is inspected.
	Operation ArithmeticRule `json:"operation" yaml:"operation"`

	// Routing picks the target worker for each transformed item.
	Routing RoutingRule `json:"routing" yaml:"routing"`
}

// String renders the spec on one line for logs and diagnostics.
func (s WorkerSpec) String() string {
	return fmt.Sprintf("worker %d: items=%v op=%q %s", s.ID, s.Items, s.Operation.String(), s.Routing.String())
}
