// Package harness runs keepaway scenarios: worker sets paired with run
// configurations and the results they must produce.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: example
//	description: "Four workers from the notes example"
//	notes: ../workers/example.txt     # or an inline workers: list
//	runs:
//	  - name: part1
//	    mode: dampened                # or rounds: N plus dampen: true|false
//	    expect:
//	      score: 10605
//	      counts: [101, 95, 7, 105]
//	  - name: too-few
//	    rounds: 1
//	    expect:
//	      error: INSUFFICIENT_WORKERS
//	assertions:
//	  - type: counts_at
//	    run: part1
//	    round: 1
//	    counts: [2, 4, 3, 5]
//
// The notes path is resolved relative to the scenario file and may point at
// any format compiler.LoadFile understands.
//
// # Assertion Types
//
//   - counts_at: the handling counts after a given round
//   - monotonic_counts: no worker's count ever decreases between rounds
//   - top_workers: the IDs of the two busiest workers
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory store. Run ids come from a
// sequence generator seeded with the scenario name, and every run's
// per-round counts are stored and read back before assertions are
// evaluated, so a Result is reproducible byte for byte and can be compared
// against a golden file (see RunWithGolden).
package harness
