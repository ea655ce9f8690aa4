package domain

import (
	"errors"
	"math"
	"testing"
)

func pt(x, y float64) Coordinates { return Coordinates{X: x, Y: y} }

func TestNewTruckRejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name     string
		capacity Quantity
		gamma    float64
		s        float64
		cargo    Quantity
	}{
		{"zero capacity", 0, math.Pi / 2, 1, 0},
		{"zero gamma", Precision, 0, 1, 0},
		{"gamma above pi", Precision, 4, 1, 0},
		{"negative segment", Precision, math.Pi / 2, -1, 0},
		{"infinite segment", Precision, math.Pi / 2, math.Inf(1), 0},
		{"cargo above capacity", Precision, math.Pi / 2, 1, 2 * Precision},
	}

	for _, tc := range cases {
		_, err := NewTruck(tc.capacity, tc.gamma, tc.s, pt(0, 0), tc.cargo)
		if !errors.Is(err, ErrInvalidTruck) {
			t.Errorf("%s: err = %v, want ErrInvalidTruck", tc.name, err)
		}
	}
}

func TestTruckMoveDropsRepeatedStopover(t *testing.T) {
	truck, err := NewTruck(2*Precision, math.Pi/2, 1, pt(0, 0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	truck.Move(pt(1, 0), Precision)
	truck.Move(pt(1, 0), 0)
	truck.Move(pt(1, 1), 0)

	if truck.Path.Len() != 3 {
		t.Fatalf("path has %d stopovers, want 3", truck.Path.Len())
	}
	m := truck.LastMovement()
	if !m.From.Equal(pt(1, 0)) || !m.To.Equal(pt(1, 1)) || m.Quantity != 0 {
		t.Fatalf("last movement = %+v", m)
	}
	if !truck.Position().Equal(pt(1, 1)) {
		t.Fatalf("position = %v, want (1, 1)", truck.Position())
	}
}

func TestTruckValidate(t *testing.T) {
	build := func(gamma, s float64, stops ...Stopover) *Truck {
		return &Truck{Capacity: Precision, Gamma: gamma, MinSegment: s, Path: NewPath(stops...)}
	}

	ok := build(math.Pi/2, 1,
		Stopover{Coordinates: pt(0, 0)},
		Stopover{Coordinates: pt(0.5, 0), QuantityToBringIn: Precision},
		Stopover{Coordinates: pt(3, 0), QuantityToBringIn: Precision},
		Stopover{Coordinates: pt(3, 2)},
	)
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sharp := build(math.Pi/4, 0,
		Stopover{Coordinates: pt(0, 0)},
		Stopover{Coordinates: pt(1, 0)},
		Stopover{Coordinates: pt(1, 1)},
	)
	if err := sharp.Validate(); !errors.Is(err, ErrRouteInfeasible) {
		t.Fatalf("sharp turn: err = %v, want ErrRouteInfeasible", err)
	}

	short := build(math.Pi, 2,
		Stopover{Coordinates: pt(0, 0)},
		Stopover{Coordinates: pt(3, 0)},
		Stopover{Coordinates: pt(4, 0)},
	)
	if err := short.Validate(); !errors.Is(err, ErrRouteInfeasible) {
		t.Fatalf("short movement: err = %v, want ErrRouteInfeasible", err)
	}

	overloaded := build(math.Pi, 0,
		Stopover{Coordinates: pt(0, 0)},
		Stopover{Coordinates: pt(1, 0), QuantityToBringIn: 2 * Precision},
	)
	if err := overloaded.Validate(); !errors.Is(err, ErrRouteInfeasible) {
		t.Fatalf("overload: err = %v, want ErrRouteInfeasible", err)
	}
}

func TestImproveSequenceOfChains(t *testing.T) {
	truck, err := NewTruck(Precision, math.Pi, 0, pt(0, 0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	single := func(c Coordinates) *Path { return NewPath(Stopover{Coordinates: c}) }
	a, h1, b, h2 := single(pt(10, 0)), single(pt(5, 1)), single(pt(1, 0)), single(pt(0, 1))
	chains := []*Path{a, h1, b, h2}

	truck.ImproveSequenceOfChains(chains)

	want := []*Path{b, h2, a, h1}
	for i := range want {
		if chains[i] != want[i] {
			t.Fatalf("chain %d starts at %v, want %v", i, chains[i].First(), want[i].First())
		}
	}
}

func TestImproveSequenceOfChainsKeepsOptimalOrder(t *testing.T) {
	truck, err := NewTruck(Precision, math.Pi, 0, pt(0, 0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	single := func(c Coordinates) *Path { return NewPath(Stopover{Coordinates: c}) }
	chains := []*Path{single(pt(1, 0)), single(pt(2, 0)), single(pt(3, 0)), single(pt(4, 0))}
	orig := append([]*Path(nil), chains...)

	truck.ImproveSequenceOfChains(chains)

	for i := range orig {
		if chains[i] != orig[i] {
			t.Fatalf("chain %d moved", i)
		}
	}
}
