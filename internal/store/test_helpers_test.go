package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/keepaway/internal/ir"
	"github.com/roach88/keepaway/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run record for the example workers.
func createTestRun(id, mode string, counts []uint64, score uint64) ir.RunRecord {
	return ir.RunRecord{
		ID:            id,
		SpecHash:      ir.MustSpecHash(testutil.ExampleSpecs()),
		Mode:          mode,
		Rounds:        20,
		Dampen:        mode == "dampened",
		Modulus:       testutil.ExampleModulus,
		Counts:        counts,
		Score:         score,
		EngineVersion: ir.EngineVersion,
	}
}
