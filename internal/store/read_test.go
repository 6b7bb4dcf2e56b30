package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/keepaway/internal/engine"
	"github.com/roach88/keepaway/internal/ir"
	"github.com/roach88/keepaway/internal/testutil"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestRun("run-1", "undampened", testutil.ExampleUndampenedCounts(), testutil.ExampleUndampenedScore)
	rec.Rounds = 10_000
	seq, _, err := s.WriteRun(ctx, rec)
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}

	want := rec
	want.Seq = seq
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadRun() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil {
		t.Error("ListRuns() returned nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("len = %d, want 0", len(runs))
	}
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		if _, _, err := s.WriteRun(ctx, createTestRun(id, "dampened", []uint64{3, 4}, 12)); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
		if diff := cmp.Diff([]uint64{3, 4}, r.Counts); diff != "" {
			t.Errorf("run %s counts (-want +got):\n%s", r.ID, diff)
		}
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, ids); diff != "" {
		t.Errorf("ListRuns() order (-want +got):\n%s", diff)
	}
}

func TestListRunsBySpecHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	example := createTestRun("example", "dampened", testutil.ExampleDampenedCounts(), testutil.ExampleDampenedScore)
	other := createTestRun("other", "dampened", []uint64{1, 1}, 1)
	other.SpecHash = ir.MustSpecHash([]ir.WorkerSpec{testutil.Always(0, nil, 1), testutil.Always(1, nil, 0)})

	for _, rec := range []ir.RunRecord{example, other} {
		if _, _, err := s.WriteRun(ctx, rec); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", rec.ID, err)
		}
	}

	runs, err := s.ListRunsBySpecHash(ctx, example.SpecHash)
	if err != nil {
		t.Fatalf("ListRunsBySpecHash() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "example" {
		t.Errorf("ListRunsBySpecHash() = %+v, want only the example run", runs)
	}
}

func TestReadTrace_RecordedRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := engine.NewRoundRecorder()
	report, err := engine.Simulate(testutil.ExampleSpecs(), engine.ModeDampened, engine.WithObserver(rec))
	if err != nil {
		t.Fatalf("Simulate() failed: %v", err)
	}

	run := createTestRun("traced", "dampened", report.Counts, report.Score)
	run.Trace = rec.Trace()
	if _, _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	trace, err := s.ReadTrace(ctx, "traced")
	if err != nil {
		t.Fatalf("ReadTrace() failed: %v", err)
	}
	if diff := cmp.Diff(rec.Trace(), trace); diff != "" {
		t.Errorf("ReadTrace() mismatch (-want +got):\n%s", diff)
	}
	if len(trace) != 20 {
		t.Errorf("len(trace) = %d, want 20", len(trace))
	}
}

func TestReadTrace_Missing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, _, err := s.WriteRun(ctx, createTestRun("plain", "dampened", []uint64{1, 2}, 2)); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	_, err := s.ReadTrace(ctx, "plain")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadTrace() error = %v, want sql.ErrNoRows", err)
	}
}
