package engine

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/roach88/keepaway/internal/ir"
)

// CheckWidth reports the first worker whose operation can leave the int64
// range for an item it may be holding.
//
// Every item a worker inspects is either one of its own starting items or a
// value already reduced below modulus, so the largest magnitude it can see is
// max(modulus-1, |largest starting item|). The check is on magnitudes and is
// therefore conservative for rules that add a negative constant.
func CheckWidth(specs []ir.WorkerSpec, modulus ir.Item) error {
	for _, spec := range specs {
		bound := uint64(modulus - 1)
		for _, item := range spec.Items {
			if item == math.MinInt64 {
				return NewMalformedSpecError(spec.ID, fmt.Sprintf("starting item %d does not fit in int64 magnitude", item))
			}
			if m := magnitude(item); m > bound {
				bound = m
			}
		}
		if !fitsInt64(spec.Operation, bound) {
			return NewMalformedSpecError(spec.ID, fmt.Sprintf(
				"operation %q overflows int64 for items up to %d (modulus %d)",
				spec.Operation.String(), bound, modulus))
		}
	}
	return nil
}

// fitsInt64 reports whether rule.Evaluate(x) stays in int64 for every
// |x| <= bound.
func fitsInt64(rule ir.ArithmeticRule, bound uint64) bool {
	a := operandBound(rule.A, bound)
	b := operandBound(rule.B, bound)
	if a > math.MaxInt64 || b > math.MaxInt64 {
		return false
	}

	switch rule.Op {
	case ir.OpMultiply:
		hi, lo := bits.Mul64(a, b)
		return hi == 0 && lo <= math.MaxInt64
	default:
		sum, carry := bits.Add64(a, b, 0)
		return carry == 0 && sum <= math.MaxInt64
	}
}

func operandBound(o ir.Operand, bound uint64) uint64 {
	if o.Kind == ir.OperandOld {
		return bound
	}
	return magnitude(o.Value)
}

func magnitude(v ir.Item) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
