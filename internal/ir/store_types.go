package ir

// RunRecord is one completed simulation run as persisted by the store.
//
// NOTE: Seq is assigned by the store on insert and orders runs logically.
// Records never carry wall-clock timestamps.
type RunRecord struct {
	ID            string   `json:"id"`
	Seq           int64    `json:"seq"`
	SpecHash      string   `json:"spec_hash"`
	Mode          string   `json:"mode"`
	Rounds        int      `json:"rounds"`
	Dampen        bool     `json:"dampen"`
	Modulus       Item     `json:"modulus"`
	Counts        []uint64 `json:"counts"`
	Score         uint64   `json:"score"`
	EngineVersion string   `json:"engine_version"`

	// Trace holds the handling counts after every round, if recorded.
	// Row r is the state after round r+1.
	Trace [][]uint64 `json:"trace,omitempty"`
}
