package engine

// Observer receives every throw and the counts at the end of every round.
//
// Observers run synchronously inside Step, in the registry's goroutine. They
// must not call back into the registry's mutating methods.
type Observer interface {
	// ObserveThrow is called once per routed item, before the value is
	// reduced and delivered. t.Value is the unreduced value that drove the
	// routing decision.
	ObserveThrow(round int64, t Throw)

	// ObserveRound is called after every round with a copy of the
	// handling counts, indexed by WorkerID.
	ObserveRound(round int64, counts []uint64)
}

// RoundRecorder records the handling counts after every round.
// The recorded trace is what the store persists for a run.
type RoundRecorder struct {
	rounds [][]uint64
}

// NewRoundRecorder creates an empty recorder.
func NewRoundRecorder() *RoundRecorder {
	return &RoundRecorder{}
}

// ObserveThrow implements Observer. Throws are not recorded.
func (r *RoundRecorder) ObserveThrow(int64, Throw) {}

// ObserveRound implements Observer.
func (r *RoundRecorder) ObserveRound(_ int64, counts []uint64) {
	r.rounds = append(r.rounds, counts)
}

// Trace returns the recorded counts; row i is the state after round i+1.
func (r *RoundRecorder) Trace() [][]uint64 {
	return r.rounds
}

// ThrowLog records every throw in order. Used to compare routing decisions
// across runs.
type ThrowLog struct {
	Throws []Throw
	Rounds []int64
}

// ObserveThrow implements Observer.
func (l *ThrowLog) ObserveThrow(round int64, t Throw) {
	l.Throws = append(l.Throws, t)
	l.Rounds = append(l.Rounds, round)
}

// ObserveRound implements Observer. Counts are not recorded.
func (l *ThrowLog) ObserveRound(int64, []uint64) {}
