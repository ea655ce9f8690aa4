package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinatesEqualWithinTolerance(t *testing.T) {
	assert.True(t, pt(1, 2).Equal(pt(1+CoordTolerance/2, 2-CoordTolerance/2)))
	assert.False(t, pt(1, 2).Equal(pt(1+2*CoordTolerance, 2)))
	assert.True(t, pt(1e-7, -1e-7).IsZero())
}

func TestRotateAndSetLength(t *testing.T) {
	v := pt(1, 0).Rotate(math.Pi / 2)
	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, 1, v.Y, 1e-12)

	w := pt(3, 4).SetLength(10)
	assert.InDelta(t, 6, w.X, 1e-12)
	assert.InDelta(t, 8, w.Y, 1e-12)

	assert.Equal(t, Coordinates{}, Coordinates{}.SetLength(5))

	u := pt(2, 0).VectorByAngle(-math.Pi/2, 3)
	assert.True(t, u.Equal(pt(0, -3)))
}

func TestAngleToAndClockwise(t *testing.T) {
	assert.InDelta(t, math.Pi/2, pt(1, 0).AngleTo(pt(0, 5)), 1e-12)
	assert.InDelta(t, math.Pi, pt(1, 0).AngleTo(pt(-1, 0)), 1e-12)
	assert.Zero(t, pt(0, 0).AngleTo(pt(1, 1)))

	assert.True(t, pt(1, 0).Clockwise(pt(0, -1)))
	assert.False(t, pt(1, 0).Clockwise(pt(0, 1)))
}

func TestQuantityFixedPoint(t *testing.T) {
	q := QuantityFromFloat(1.23456)
	assert.Equal(t, Quantity(12346), q)
	assert.Equal(t, "1.2346", q.String())
	assert.Equal(t, Quantity(12346), QuantityFromFloat(-1.23456).Abs())
}
