package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepaway/internal/ir"
	"github.com/roach88/keepaway/internal/testutil"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateExample(t *testing.T) {
	assert.Empty(t, Validate(testutil.ExampleSpecs()))
}

func TestValidateUnorderedButContiguous(t *testing.T) {
	specs := testutil.ExampleSpecs()
	specs[0], specs[3] = specs[3], specs[0]
	assert.Empty(t, Validate(specs))
}

func TestValidateNoWorkers(t *testing.T) {
	errs := Validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoWorkers, errs[0].Code)
}

func TestValidateDuplicate(t *testing.T) {
	errs := Validate([]ir.WorkerSpec{
		testutil.Always(0, nil, 1),
		testutil.Always(0, nil, 1),
	})
	assert.Equal(t, []string{ErrDuplicateWorkerID, ErrNonContiguousIDs}, codes(errs))
	assert.Equal(t, "workers[1].id", errs[0].Field)
	assert.Contains(t, errs[1].Message, "missing [1]")
}

func TestValidateGap(t *testing.T) {
	errs := Validate([]ir.WorkerSpec{
		testutil.Always(0, nil, 1),
		testutil.Always(2, nil, 0),
	})
	assert.Equal(t, []string{ErrNonContiguousIDs}, codes(errs))
}

func TestValidateCollectsAll(t *testing.T) {
	specs := []ir.WorkerSpec{
		testutil.Spec(0, nil, "old + 1", 0, 1, 5),
		testutil.Spec(1, nil, "old + 1", -3, -1, 0),
	}

	errs := Validate(specs)
	assert.Equal(t, []string{
		ErrInvalidDivisor, ErrUnknownTarget,
		ErrInvalidDivisor, ErrUnknownTarget,
	}, codes(errs))
	assert.Equal(t, "workers[0].if_false", errs[1].Field)
	assert.Equal(t, "workers[1].if_true", errs[3].Field)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "workers[0].divisor", Message: "divisor must be positive, got 0", Code: ErrInvalidDivisor}
	assert.Equal(t, "[E103] workers[0].divisor: divisor must be positive, got 0", e.Error())

	e.Line = 4
	assert.Equal(t, "[E103] line 4: workers[0].divisor: divisor must be positive, got 0", e.Error())
}
