package domain

import "math"

// CoordTolerance is the absolute per-axis tolerance under which two
// coordinates denote the same cell.
const CoordTolerance = 1e-6

// Immutable planar coordinates. The same type doubles as a 2D vector.
type Coordinates struct {
	X float64
	Y float64
}

// Return coordinates as [x, y] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.X, c.Y} }

func (c Coordinates) Add(v Coordinates) Coordinates { return Coordinates{X: c.X + v.X, Y: c.Y + v.Y} }

func (c Coordinates) Sub(v Coordinates) Coordinates { return Coordinates{X: c.X - v.X, Y: c.Y - v.Y} }

func (c Coordinates) Scale(k float64) Coordinates { return Coordinates{X: k * c.X, Y: k * c.Y} }

func (c Coordinates) Dot(v Coordinates) float64 { return c.X*v.X + c.Y*v.Y }

// Cross returns the z component of the 3D cross product c × v.
// Positive when v lies counterclockwise of c.
func (c Coordinates) Cross(v Coordinates) float64 { return c.X*v.Y - c.Y*v.X }

func (c Coordinates) Norm() float64 { return math.Hypot(c.X, c.Y) }

func (c Coordinates) Distance(v Coordinates) float64 { return c.Sub(v).Norm() }

// IsZero reports whether c is the null vector within tolerance.
func (c Coordinates) IsZero() bool { return c.Equal(Coordinates{}) }

// SetLength returns a vector with the direction of c and the given length.
// The null vector stays null.
func (c Coordinates) SetLength(length float64) Coordinates {
	n := c.Norm()
	if n == 0 {
		return c
	}
	return c.Scale(length / n)
}

// Rotate returns c rotated counterclockwise by alpha radians.
func (c Coordinates) Rotate(alpha float64) Coordinates {
	sin, cos := math.Sincos(alpha)
	return Coordinates{
		X: c.X*cos - c.Y*sin,
		Y: c.X*sin + c.Y*cos,
	}
}

// AngleTo returns the unsigned angle in [0, π] between c and v.
// A null vector has no direction, so the angle is reported as zero.
func (c Coordinates) AngleTo(v Coordinates) float64 {
	den := c.Norm() * v.Norm()
	if den == 0 {
		return 0
	}
	// Rounding can push the cosine slightly outside [-1, 1].
	cos := math.Max(-1, math.Min(1, c.Dot(v)/den))
	return math.Acos(cos)
}

// VectorByAngle returns c rotated by alpha and rescaled to length.
func (c Coordinates) VectorByAngle(alpha, length float64) Coordinates {
	return c.Rotate(alpha).SetLength(length)
}

// Clockwise reports whether turning from c to v is a clockwise turn.
func (c Coordinates) Clockwise(v Coordinates) bool { return c.Cross(v) < 0 }

func (c Coordinates) SameX(v Coordinates) bool { return math.Abs(c.X-v.X) < CoordTolerance }

func (c Coordinates) SameY(v Coordinates) bool { return math.Abs(c.Y-v.Y) < CoordTolerance }

// Equal compares both axes with CoordTolerance.
func (c Coordinates) Equal(v Coordinates) bool { return c.SameX(v) && c.SameY(v) }

// TurnAngle returns the turn performed at b when travelling a -> b -> c.
func TurnAngle(a, b, c Coordinates) float64 {
	return b.Sub(a).AngleTo(c.Sub(b))
}
