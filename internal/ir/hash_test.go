package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpecs() []WorkerSpec {
	return []WorkerSpec{
		{
			ID:        0,
			Items:     []Item{79, 98},
			Operation: ArithmeticRule{Op: OpMultiply, A: Old(), B: Const(19)},
			Routing:   RoutingRule{Divisor: 23, IfTrue: 2, IfFalse: 3},
		},
		{
			ID:        1,
			Items:     []Item{54, 65},
			Operation: ArithmeticRule{Op: OpAdd, A: Old(), B: Const(6)},
			Routing:   RoutingRule{Divisor: 19, IfTrue: 2, IfFalse: 0},
		},
	}
}

func TestSpecHash_Deterministic(t *testing.T) {
	h1, err := SpecHash(sampleSpecs())
	require.NoError(t, err)
	h2, err := SpecHash(sampleSpecs())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "hex-encoded SHA-256")
}

func TestSpecHash_SensitiveToContent(t *testing.T) {
	base := MustSpecHash(sampleSpecs())

	changedItem := sampleSpecs()
	changedItem[0].Items[1] = 99
	assert.NotEqual(t, base, MustSpecHash(changedItem))

	changedRule := sampleSpecs()
	changedRule[1].Operation = ArithmeticRule{Op: OpMultiply, A: Old(), B: Const(6)}
	assert.NotEqual(t, base, MustSpecHash(changedRule))

	changedTarget := sampleSpecs()
	changedTarget[1].Routing.IfFalse = 1
	assert.NotEqual(t, base, MustSpecHash(changedTarget))
}

func TestSpecHash_OrderMatters(t *testing.T) {
	specs := sampleSpecs()
	swapped := []WorkerSpec{specs[1], specs[0]}
	assert.NotEqual(t, MustSpecHash(specs), MustSpecHash(swapped))
}

func TestSpecHash_Empty(t *testing.T) {
	h, err := SpecHash(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, h)
}
