package store

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/keepaway/internal/ir"
)

// WriteRun stores a completed run in a single transaction: the run row, one
// worker_counts row per worker, and the compressed trace if rec.Trace is
// non-nil.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency. If a run with the same ID
// already exists nothing is written and the existing seq is returned with
// inserted=false. rec.Seq is ignored; the store assigns it.
func (s *Store) WriteRun(ctx context.Context, rec ir.RunRecord) (seq int64, inserted bool, err error) {
	if rec.Score > math.MaxInt64 {
		return 0, false, fmt.Errorf("write run: score %d does not fit in an SQLite integer", rec.Score)
	}
	for i, c := range rec.Counts {
		if c > math.MaxInt64 {
			return 0, false, fmt.Errorf("write run: count[%d] = %d does not fit in an SQLite integer", i, c)
		}
	}

	var blob []byte
	if rec.Trace != nil {
		if blob, err = encodeTrace(rec.Trace); err != nil {
			return 0, false, fmt.Errorf("write run: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, spec_hash, mode, rounds, dampen, modulus, score, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.SpecHash,
		rec.Mode,
		rec.Rounds,
		rec.Dampen,
		int64(rec.Modulus),
		int64(rec.Score),
		rec.EngineVersion,
	)
	if err != nil {
		return 0, false, fmt.Errorf("write run: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("write run: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, rec.ID).Scan(&seq)
		if err != nil {
			return 0, false, fmt.Errorf("write run: select existing: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("write run: commit (existing): %w", err)
		}
		return seq, false, nil
	}

	seq, err = result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("write run: last insert id: %w", err)
	}

	for worker, handled := range rec.Counts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO worker_counts (run_id, worker_id, handled)
			VALUES (?, ?, ?)
		`, rec.ID, worker, int64(handled))
		if err != nil {
			return 0, false, fmt.Errorf("write run: worker %d count: %w", worker, err)
		}
	}

	if blob != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO round_traces (run_id, encoding, rounds, data)
			VALUES (?, ?, ?, ?)
		`, rec.ID, ir.TraceEncoding, len(rec.Trace), blob)
		if err != nil {
			return 0, false, fmt.Errorf("write run: trace: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("write run: commit: %w", err)
	}

	return seq, true, nil
}
