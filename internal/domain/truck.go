package domain

import (
	"fmt"
	"math"
)

// AngleTolerance absorbs floating point noise in the turn and segment checks.
const AngleTolerance = 1e-6

// Earthwork truck aggregate: the planned path plus the vehicle constraints.
//
// Gamma is the maximum turn angle in radians at any stopover and MinSegment
// the minimum length of every movement.
type Truck struct {
	Capacity   Quantity
	Gamma      float64
	MinSegment float64
	Path       *Path
}

func NewTruck(capacity Quantity, gamma, minSegment float64, start Coordinates, initialCargo Quantity) (*Truck, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("new truck: %w: capacity must be positive (capacity=%s)", ErrInvalidTruck, capacity)
	}
	if !(gamma > 0 && gamma <= math.Pi) {
		return nil, fmt.Errorf("new truck: %w: gamma must be in (0, pi] (gamma=%g)", ErrInvalidTruck, gamma)
	}
	if minSegment < 0 || math.IsNaN(minSegment) || math.IsInf(minSegment, 0) {
		return nil, fmt.Errorf("new truck: %w: min segment must be finite and non-negative (s=%g)", ErrInvalidTruck, minSegment)
	}
	if initialCargo < 0 || initialCargo > capacity {
		return nil, fmt.Errorf("new truck: %w: initial cargo %s outside [0, %s]", ErrInvalidTruck, initialCargo, capacity)
	}

	return &Truck{
		Capacity:   capacity,
		Gamma:      gamma,
		MinSegment: minSegment,
		Path:       NewPath(Stopover{Coordinates: start, QuantityToBringIn: initialCargo}),
	}, nil
}

// Clone copies the truck and its path.
func (t *Truck) Clone() *Truck {
	c := *t
	c.Path = t.Path.Clone()
	return &c
}

func (t *Truck) Position() Coordinates { return t.Path.Last() }

// Move drives the truck to c carrying q units.
func (t *Truck) Move(c Coordinates, q Quantity) { t.Path.AddStopover(c, q) }

// MoveAlong appends a whole sub-path (typically a chain) to the route.
func (t *Truck) MoveAlong(p *Path) { t.Path.Append(p) }

func (t *Truck) Movement(i int) Movement { return t.Path.Movement(i) }

func (t *Truck) LastMovement() Movement { return t.Path.Movement(t.Path.Len() - 2) }

// AngleOK reports whether a turn of the given angle is executable.
func (t *Truck) AngleOK(angle float64) bool { return angle <= t.Gamma+AngleTolerance }

// SegmentOK reports whether the truck may drive straight from a to b.
func (t *Truck) SegmentOK(a, b Coordinates) bool {
	return a.Distance(b) >= t.MinSegment-AngleTolerance
}

// Validate checks the capacity bound at every stopover, the turn bound at
// every interior stopover and the segment bound on every movement but the
// first, which leaves the depot and may start outside the field.
func (t *Truck) Validate() error {
	p := t.Path
	for i := 0; i < p.Len(); i++ {
		q := p.At(i).QuantityToBringIn
		if q < 0 || q > t.Capacity {
			return fmt.Errorf("validate route: %w: stopover %d carries %s (capacity=%s)", ErrRouteInfeasible, i, q, t.Capacity)
		}
	}

	for i := 2; i < p.Len(); i++ {
		a, b, c := p.Coordinates(i-2), p.Coordinates(i-1), p.Coordinates(i)
		if angle := TurnAngle(a, b, c); !t.AngleOK(angle) {
			return fmt.Errorf("validate route: %w: turn at stopover %d is %.6f rad (gamma=%.6f)", ErrRouteInfeasible, i-1, angle, t.Gamma)
		}
		if !t.SegmentOK(b, c) {
			return fmt.Errorf("validate route: %w: movement %d is %.6f long (min=%.6f)", ErrRouteInfeasible, i-1, b.Distance(c), t.MinSegment)
		}
	}

	return nil
}

// ImproveSequenceOfChains performs one forward sweep of pairwise exchanges on
// chains, which alternate peak and hole chains and will be appended after the
// truck's current position. Two chains of the same parity are swapped when
// the four connections around them get strictly shorter.
// The sweep is first-improvement and is not repeated.
func (t *Truck) ImproveSequenceOfChains(chains []*Path) {
	start := t.Position()

	prevEnd := func(i int) Coordinates {
		if i == 0 {
			return start
		}
		return chains[i-1].Last()
	}
	// Distance from the end of the chain at position i to whatever follows it.
	out := func(from Coordinates, i int) float64 {
		if i == len(chains)-1 {
			return 0
		}
		return from.Distance(chains[i+1].First())
	}

	for i := 0; i < len(chains); i++ {
		for j := i + 2; j < len(chains); j += 2 {
			ci, cj := chains[i], chains[j]
			before := prevEnd(i).Distance(ci.First()) + out(ci.Last(), i) +
				prevEnd(j).Distance(cj.First()) + out(cj.Last(), j)
			after := prevEnd(i).Distance(cj.First()) + out(cj.Last(), i) +
				prevEnd(j).Distance(ci.First()) + out(ci.Last(), j)

			if after < before-AngleTolerance {
				chains[i], chains[j] = chains[j], chains[i]
			}
		}
	}
}
