package engine

import (
	"fmt"
	"math"

	"github.com/roach88/keepaway/internal/ir"
)

// ComputeModulus returns the least common multiple of divisors.
//
// The LCM is built pairwise through the greatest common divisor, so it is
// correct for any positive divisors, not only pairwise coprime ones. The LCM
// of an empty list is 1.
//
// Returns an error for a non-positive divisor or if the result does not fit
// in an int64.
func ComputeModulus(divisors []ir.Item) (ir.Item, error) {
	lcm := ir.Item(1)
	for i, d := range divisors {
		if d <= 0 {
			return 0, fmt.Errorf("divisor[%d] = %d: must be positive", i, d)
		}
		step := d / gcd(lcm, d)
		if lcm > math.MaxInt64/step {
			return 0, fmt.Errorf("least common multiple overflows int64 at divisor[%d] = %d", i, d)
		}
		lcm *= step
	}
	return lcm, nil
}

// Reduce returns value mod modulus in [0, modulus), also for negative values.
//
// For every divisor d of modulus, Reduce(v, modulus) % d == v % d (up to
// sign), so divisibility by d is unchanged.
func Reduce(value, modulus ir.Item) ir.Item {
	r := value % modulus
	if r < 0 {
		r += modulus
	}
	return r
}

func gcd(a, b ir.Item) ir.Item {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
