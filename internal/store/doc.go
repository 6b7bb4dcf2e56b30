// Package store provides SQLite-backed run history for keepaway.
//
// Each completed simulation is stored as:
//   - a row in runs (mode, rounds, dampening, modulus, score, spec hash)
//   - one worker_counts row per worker with its final handling count
//   - optionally, a round_traces row holding the per-round counts,
//     JSON-encoded and zstd-compressed
//
// # Ordering
//
// Runs are ordered by seq, an autoincrement assigned on insert, and never by
// timestamps. Every listing query uses ORDER BY seq ASC, id ASC COLLATE
// BINARY.
//
// The file runs in WAL mode over a single connection. PRAGMA user_version
// records the schema version; Open refuses files from a newer one.
//
// Spec hashes come from ir.SpecHash, so runs started from the same workers
// can be grouped regardless of the file format they were loaded from.
package store
