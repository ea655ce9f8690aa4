package domain

import (
	"math"
	"strconv"
)

// Precision is the fixed-point scale of Quantity: one unit of volume is
// Precision quantity steps.
const Precision = 10_000

// Quantity is a signed terrain volume stored as a fixed-point integer.
// Geometry stays in float64; every volume computation uses Quantity so
// that the zero-sum invariant of a Field is exact.
type Quantity int64

// QuantityFromFloat converts a real volume into fixed point, rounding to the
// nearest step.
func QuantityFromFloat(v float64) Quantity {
	return Quantity(math.Round(v * Precision))
}

func (q Quantity) Float() float64 { return float64(q) / Precision }

func (q Quantity) String() string { return strconv.FormatFloat(q.Float(), 'f', -1, 64) }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}
