package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/keepaway/internal/ir"
)

const (
	runColumns = `seq, id, spec_hash, mode, rounds, dampen, modulus, score, engine_version`
	runOrder   = `seq ASC, id COLLATE BINARY ASC`
)

// ReadRun retrieves a single run by ID, including its worker counts.
// The trace is not loaded; use ReadTrace.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if err != nil {
		return ir.RunRecord{}, err
	}

	rec.Counts, err = s.readCounts(ctx, rec.ID)
	if err != nil {
		return ir.RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns every stored run with its worker counts.
// Results are ordered by seq ASC, id ASC.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]ir.RunRecord, error) {
	return s.ListRunsWhere(ctx, RunFilter{})
}

// ListRunsBySpecHash returns the runs started from the given worker specs,
// ordered by seq ASC, id ASC.
func (s *Store) ListRunsBySpecHash(ctx context.Context, specHash string) ([]ir.RunRecord, error) {
	return s.ListRunsWhere(ctx, RunFilter{SpecHash: specHash})
}

// ListRunsWhere returns the runs matching f, ordered by seq ASC, id ASC.
func (s *Store) ListRunsWhere(ctx context.Context, f RunFilter) ([]ir.RunRecord, error) {
	query, args, err := f.query()
	if err != nil {
		return nil, err
	}
	return s.listRuns(ctx, query, args...)
}

func (s *Store) listRuns(ctx context.Context, query string, args ...any) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []ir.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	// Close before the per-run count queries; the pool has one connection.
	rows.Close()

	for i := range runs {
		runs[i].Counts, err = s.readCounts(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}

	if runs == nil {
		runs = []ir.RunRecord{}
	}
	return runs, nil
}

// readCounts returns the handling counts of a run, indexed by worker ID.
func (s *Store) readCounts(ctx context.Context, runID string) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT worker_id, handled
		FROM worker_counts
		WHERE run_id = ?
		ORDER BY worker_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := []uint64{}
	for rows.Next() {
		var worker int
		var handled int64
		if err := rows.Scan(&worker, &handled); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		if worker != len(counts) {
			return nil, fmt.Errorf("run %s: worker counts are not contiguous at worker %d", runID, worker)
		}
		counts = append(counts, uint64(handled))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// ReadTrace returns the per-round handling counts recorded for a run.
// Returns sql.ErrNoRows if the run has no stored trace.
func (s *Store) ReadTrace(ctx context.Context, runID string) ([][]uint64, error) {
	var encoding string
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT encoding, data FROM round_traces WHERE run_id = ?
	`, runID).Scan(&encoding, &blob)
	if err != nil {
		return nil, err
	}
	return decodeTrace(encoding, blob)
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (ir.RunRecord, error) {
	var rec ir.RunRecord
	var modulus, score int64

	err := row.Scan(
		&rec.Seq, &rec.ID, &rec.SpecHash, &rec.Mode, &rec.Rounds,
		&rec.Dampen, &modulus, &score, &rec.EngineVersion,
	)
	if err == sql.ErrNoRows {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("scan run: %w", err)
	}

	rec.Modulus = ir.Item(modulus)
	rec.Score = uint64(score)
	return rec, nil
}
