package domain

import (
	"fmt"
	"math"
	"strings"
)

// RepairPolicy selects how a detour spreads the excess turn of a stopover.
type RepairPolicy int

const (
	// RepairRegularPolygon walks the sides of a regular N-gon, N = ceil(2π/γ).
	// The first heading absorbs the fraction of the turn that is not a multiple
	// of 2π/N, so the following sides line up with the original direction.
	RepairRegularPolygon RepairPolicy = iota

	// RepairMaxTurn turns by exactly γ at every detour stopover.
	RepairMaxTurn
)

func (p RepairPolicy) String() string {
	return [...]string{"regular_polygon", "max_turn"}[p]
}

func ParseRepairPolicy(s string) (RepairPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "regular_polygon", "polygon":
		return RepairRegularPolygon, nil
	case "max_turn", "gamma":
		return RepairMaxTurn, nil
	}
	return 0, fmt.Errorf("parse repair policy: unknown policy %q", s)
}

// FixPath makes every turn of the path executable.
//
// Stopover triples are scanned left to right. When the turn at b in a -> b -> c
// exceeds Gamma, a detour is inserted between b and c. Every turn inside a
// detour is bounded by construction, so the scan resumes right after it.
// Detour stopovers carry the cargo of the movement they split.
func (t *Truck) FixPath(policy RepairPolicy) error {
	p := t.Path
	for i := 2; i < p.Len(); i++ {
		a, b, c := p.Coordinates(i-2), p.Coordinates(i-1), p.Coordinates(i)
		if t.AngleOK(TurnAngle(a, b, c)) {
			continue
		}

		detour, err := t.detour(policy, a, b, c)
		if err != nil {
			return fmt.Errorf("fix path: stopover %d at (%g, %g): %w", i-1, b.X, b.Y, err)
		}

		q := p.At(i).QuantityToBringIn
		for k, s := range detour {
			if !p.Insert(i+k, Stopover{Coordinates: s, QuantityToBringIn: q}) {
				return fmt.Errorf("fix path: stopover %d: %w: degenerate detour", i-1, ErrInfeasibleRepair)
			}
		}
		i += len(detour)
	}
	return nil
}

// stepLength is the side of the detour polygons. A truck without a minimum
// segment still needs a positive side.
func (t *Truck) stepLength(a, b, c Coordinates) float64 {
	if t.MinSegment > 0 {
		return t.MinSegment
	}
	return math.Min(a.Distance(b), b.Distance(c)) / 2
}

// sides returns the number of sides of the detour polygon.
func (t *Truck) sides() int {
	// The epsilon keeps γ = 2π/k from rounding up to k+1.
	return int(math.Ceil(2*math.Pi/t.Gamma - 1e-9))
}

// turns returns the first turn and the per-step turn of a detour that must
// rotate the heading by theta in total.
func (t *Truck) turns(policy RepairPolicy, theta float64) (first, step float64) {
	if policy == RepairMaxTurn {
		return t.Gamma, t.Gamma
	}

	step = 2 * math.Pi / float64(t.sides())
	first = theta - math.Floor(theta/step)*step
	if first < AngleTolerance {
		first = step
	}
	if first > t.Gamma {
		first = t.Gamma
	}
	return first, step
}

func (t *Truck) detour(policy RepairPolicy, a, b, c Coordinates) ([]Coordinates, error) {
	h0 := b.Sub(a).SetLength(1)
	d := c.Sub(b)
	if h0.IsZero() || d.IsZero() {
		return nil, fmt.Errorf("%w: zero-length movement", ErrInfeasibleRepair)
	}

	theta := h0.AngleTo(d)
	sense := 1.0
	if h0.Clockwise(d) {
		sense = -1
	}
	s := t.stepLength(a, b, c)

	first, step := t.turns(policy, theta)
	if pts, ok := t.walk(b, c, h0, sense, first, step, s); ok {
		return pts, nil
	}

	// The polygon's first heading can overshoot c: step by exactly γ instead.
	if policy == RepairRegularPolygon {
		if pts, ok := t.walk(b, c, h0, sense, t.Gamma, t.Gamma, s); ok {
			return pts, nil
		}
	}

	// c lies inside the polygon the truck would walk: close the detour with
	// an explicit final side, trying the opposite turn sense as well.
	for _, sg := range []float64{sense, -sense} {
		th := theta
		if sg != sense {
			th = 2*math.Pi - theta
		}
		first, step := t.turns(policy, th)
		if pts, ok := t.close(b, d, h0, sg, first, step, s); ok {
			return pts, nil
		}
	}

	if pts, ok := t.leadIn(b, c, h0, sense, step, s); ok {
		return pts, nil
	}

	return nil, fmt.Errorf("%w: no detour within %d steps (gamma=%.6f s=%.6f)", ErrInfeasibleRepair, t.sides(), t.Gamma, s)
}

// leadIn drives straight on along the incoming heading for a side of length
// L, then turns by step at every side of length s until the heading points
// at c. L doubles from s up to far.
//
// The turning stopovers stay within 2r of the lead-in end, r being the
// circumradius of the polygon. Once c is more than 2r/sin(γ/2) away, the
// bearing to c moves by less than γ/2 over those stopovers while the
// headings sweep every direction in steps of at most γ, so L = far always
// reaches c.
func (t *Truck) leadIn(b, c, h0 Coordinates, sense, step, s float64) ([]Coordinates, bool) {
	r := s / (2 * math.Sin(step/2))
	far := c.Sub(b).Norm() + math.Max(2*r/math.Sin(t.Gamma/2), 2*r+s) + s

	for l := s; ; l *= 2 {
		if l > far {
			l = far
		}
		start := b.Add(h0.Scale(l))
		for _, sg := range []float64{sense, -sense} {
			if pts, ok := t.turnFrom(start, c, h0, sg, step, s); ok {
				return append([]Coordinates{start}, pts...), true
			}
		}
		if l == far {
			return nil, false
		}
	}
}

// turnFrom walks sides of length s from p, rotating the heading h by step
// before each side, and stops at the first stopover, p included, from which
// c is at least s away and within Gamma of the heading.
func (t *Truck) turnFrom(p, c, h Coordinates, sense, step, s float64) ([]Coordinates, bool) {
	var pts []Coordinates
	for k := 0; ; k++ {
		toC := c.Sub(p)
		if toC.Norm() >= s-AngleTolerance && t.AngleOK(h.AngleTo(toC)) {
			return pts, true
		}
		if k > t.sides() {
			return nil, false
		}
		h = h.Rotate(sense * step)
		p = p.Add(h.Scale(s))
		pts = append(pts, p)
	}
}

// walk inserts sides of length s from b, rotating the heading by first and
// then by step, until the heading points at c within Gamma.
//
// When the remaining edge to c is shorter than s every side is rescaled by
// the common length L solving |U·L - (c - b)| = s, U being the sum of the
// unit headings, so the detour lands exactly at distance s from c.
func (t *Truck) walk(b, c, h0 Coordinates, sense, first, step, s float64) ([]Coordinates, bool) {
	d := c.Sub(b)
	h := h0
	var u Coordinates
	headings := make([]Coordinates, 0, t.sides())

	for k := 1; k < t.sides(); k++ {
		turn := step
		if k == 1 {
			turn = first
		}
		h = h.Rotate(sense * turn)
		u = u.Add(h)
		headings = append(headings, h)

		toC := d.Sub(u.Scale(s))
		if !t.AngleOK(h.AngleTo(toC)) {
			continue
		}
		if toC.Norm() >= s-AngleTolerance {
			return place(b, headings, s), true
		}
		if l, ok := rescale(u, d, s); ok && t.AngleOK(h.AngleTo(d.Sub(u.Scale(l)))) {
			return place(b, headings, l), true
		}
	}
	return nil, false
}

// rescale solves |u·L - d|² = s² for the root L >= s.
func rescale(u, d Coordinates, s float64) (float64, bool) {
	qa := u.Dot(u)
	if qa == 0 {
		return 0, false
	}
	qb := u.Dot(d)
	qc := d.Dot(d) - s*s

	disc := qb*qb - qa*qc
	if disc < 0 {
		return 0, false
	}
	l := (qb + math.Sqrt(disc)) / qa
	if l < s-AngleTolerance {
		return 0, false
	}
	return l, true
}

// close looks for k polygon sides of common length L followed by one closing
// side of length M along the next polygon heading, such that
// L·U + M·h(k+1) = d with L, M >= s. The 2x2 system is solved by Cramer's rule.
func (t *Truck) close(b, d, h0 Coordinates, sense, first, step, s float64) ([]Coordinates, bool) {
	h := h0
	var u Coordinates
	headings := make([]Coordinates, 0, t.sides())

	for k := 1; k < t.sides(); k++ {
		turn := step
		if k == 1 {
			turn = first
		}
		h = h.Rotate(sense * turn)
		u = u.Add(h)
		headings = append(headings, h)

		next := h.Rotate(sense * step)
		det := u.Cross(next)
		if math.Abs(det) < 1e-12 {
			continue
		}
		l := d.Cross(next) / det
		m := u.Cross(d) / det
		if l >= s-AngleTolerance && m >= s-AngleTolerance {
			return place(b, headings, l), true
		}
	}
	return nil, false
}

// place turns unit headings into absolute stopovers with sides of length l.
func place(b Coordinates, headings []Coordinates, l float64) []Coordinates {
	pts := make([]Coordinates, len(headings))
	cur := b
	for i, h := range headings {
		cur = cur.Add(h.Scale(l))
		pts[i] = cur
	}
	return pts
}
