package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepaway/internal/ir"
	"github.com/roach88/keepaway/internal/testutil"
)

func TestCheckWidth(t *testing.T) {
	tests := []struct {
		name    string
		items   []ir.Item
		op      string
		modulus ir.Item
		wantErr bool
	}{
		{"example squares", []ir.Item{79, 98}, "old * old", 96577, false},
		{"square at the largest safe modulus", nil, "old * old", 3_037_000_499, false},
		{"square just past it", nil, "old * old", 3_037_000_501, true},
		{"large starting item", []ir.Item{4_000_000_000}, "old * old", 6, true},
		{"negative starting item", []ir.Item{-4_000_000_000}, "old * old", 6, true},
		{"constant factor", nil, "old * 4", math.MaxInt64 / 4, false},
		{"constant factor overflows", nil, "old * 5", math.MaxInt64 / 4, true},
		{"doubling", nil, "old + old", math.MaxInt64/2 + 1, false},
		{"addition carries", []ir.Item{math.MaxInt64}, "old + 1", 2, true},
		{"negative constant counted by magnitude", []ir.Item{math.MaxInt64}, "old + -1", 2, true},
		{"minimum int64 item", []ir.Item{math.MinInt64}, "old + 0", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := []ir.WorkerSpec{testutil.Spec(0, tt.items, tt.op, 2, 0, 0)}
			err := CheckWidth(specs, tt.modulus)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsMalformedSpecError(err))
		})
	}
}
