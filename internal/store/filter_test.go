package store

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/keepaway/internal/ir"
)

func boolp(v bool) *bool { return &v }

func uint64p(v uint64) *uint64 { return &v }

func TestRunFilter_Compile(t *testing.T) {
	tests := []struct {
		name       string
		filter     RunFilter
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "empty matches everything",
			filter:  RunFilter{},
			wantSQL: "1 = 1",
		},
		{
			name:       "spec hash",
			filter:     RunFilter{SpecHash: "abc"},
			wantSQL:    "spec_hash = ?",
			wantParams: []any{"abc"},
		},
		{
			name:       "all fields in fixed order",
			filter:     RunFilter{MinScore: uint64p(100), Dampen: boolp(false), Mode: "custom", SpecHash: "abc"},
			wantSQL:    "spec_hash = ? AND mode = ? AND dampen = ? AND score >= ?",
			wantParams: []any{"abc", "custom", false, int64(100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := tt.filter.compile()
			if err != nil {
				t.Fatalf("compile() failed: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("compile() sql = %q, want %q", sql, tt.wantSQL)
			}
			if diff := cmp.Diff(tt.wantParams, params); diff != "" {
				t.Errorf("compile() params (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunFilter_ValuesAreParameterized(t *testing.T) {
	f := RunFilter{SpecHash: "x' OR '1'='1", Mode: "dampened"}
	query, params, err := f.query()
	if err != nil {
		t.Fatalf("query() failed: %v", err)
	}
	if strings.Contains(query, "OR") || strings.Contains(query, "dampened'") {
		t.Errorf("query() interpolated a value: %s", query)
	}
	if !strings.HasSuffix(query, "ORDER BY "+runOrder) {
		t.Errorf("query() = %q, want a trailing ORDER BY %s", query, runOrder)
	}
	if len(params) != 2 {
		t.Errorf("query() params = %v, want 2", params)
	}
}

func TestRunFilter_MinScoreOutOfRange(t *testing.T) {
	_, _, err := RunFilter{MinScore: uint64p(math.MaxInt64 + 1)}.compile()
	if err == nil {
		t.Fatal("compile() succeeded, want error for an unstorable min score")
	}
}

func TestListRunsWhere(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs := []ir.RunRecord{
		createTestRun("a", "dampened", []uint64{1, 2}, 2),
		createTestRun("b", "undampened", []uint64{10, 20}, 200),
		createTestRun("c", "custom", []uint64{5, 6}, 30),
		createTestRun("d", "custom", []uint64{50, 60}, 3000),
	}
	runs[3].Dampen = true
	for _, rec := range runs {
		if _, _, err := s.WriteRun(ctx, rec); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", rec.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"all", RunFilter{}, []string{"a", "b", "c", "d"}},
		{"mode", RunFilter{Mode: "custom"}, []string{"c", "d"}},
		{"dampened customs", RunFilter{Mode: "custom", Dampen: boolp(true)}, []string{"d"}},
		{"undampened", RunFilter{Dampen: boolp(false)}, []string{"b", "c"}},
		{"min score", RunFilter{MinScore: uint64p(30)}, []string{"b", "c", "d"}},
		{"no match", RunFilter{SpecHash: "nope"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListRunsWhere(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListRunsWhere() failed: %v", err)
			}
			ids := make([]string, len(got))
			for i, r := range got {
				ids[i] = r.ID
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("ListRunsWhere() ids (-want +got):\n%s", diff)
			}
		})
	}
}
