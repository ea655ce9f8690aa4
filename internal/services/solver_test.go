package services

import (
	"context"
	"earthwork-route-service/internal/domain"
	"errors"
	"math"
	"testing"
)

func TestSolverTwoByTwoField(t *testing.T) {
	field := mustField(t,
		domain.Cell{Coordinates: c(0, 0), Quantity: units(1)},
		domain.Cell{Coordinates: c(1, 0), Quantity: units(-1)},
		domain.Cell{Coordinates: c(0, 1), Quantity: units(1)},
		domain.Cell{Coordinates: c(1, 1), Quantity: units(-1)},
	)
	truck, err := domain.NewTruck(units(2), math.Pi/2, 0.1, c(0, 0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	work := field.Clone()
	s := &Solver{Builder: NewNearestNeighbourBuilder(work, truck.Capacity)}
	stats, err := s.Solve(context.Background(), truck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Chains != 2 {
		t.Fatalf("chains = %d, want 2", stats.Chains)
	}
	if !work.IsSmooth() {
		t.Fatalf("working field is not smooth")
	}

	// Both peaks come before both holes; repair only adds detours in between.
	want := []domain.Stopover{
		{Coordinates: c(0, 0)},
		{Coordinates: c(0, 1), QuantityToBringIn: units(1)},
		{Coordinates: c(1, 0), QuantityToBringIn: units(2)},
		{Coordinates: c(1, 1), QuantityToBringIn: units(1)},
	}
	k := 0
	for _, s := range truck.Path.Stopovers() {
		if k < len(want) && s == want[k] {
			k++
		}
	}
	if k != len(want) {
		t.Fatalf("route %v does not visit %v in order", truck.Path.Stopovers(), want)
	}

	checkRoute(t, field, truck)
}

func TestSolverLeavesShortSingleMoveUntouched(t *testing.T) {
	field := mustField(t,
		domain.Cell{Coordinates: c(0, 0), Quantity: units(1)},
		domain.Cell{Coordinates: c(0.5, 0), Quantity: units(-1)},
	)
	truck, err := domain.NewTruck(units(1), math.Pi/4, 1, c(0, 0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := &Solver{Builder: NewNearestNeighbourBuilder(field.Clone(), truck.Capacity)}
	if _, err := s.Solve(context.Background(), truck); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if truck.Path.Len() != 2 {
		t.Fatalf("route has %d stopovers, want 2", truck.Path.Len())
	}
	checkRoute(t, field, truck)
}

func TestSolverRandomFields(t *testing.T) {
	policies := []domain.RepairPolicy{domain.RepairRegularPolygon, domain.RepairMaxTurn}

	for seed := int64(1); seed <= 4; seed++ {
		for _, policy := range policies {
			field := gridField(t, 6, seed)
			truck, err := domain.NewTruck(units(5), math.Pi/2, 0.1, c(-1, -1), 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			s := &Solver{Builder: NewNearestNeighbourBuilder(field.Clone(), truck.Capacity), Policy: policy}
			stats, err := s.Solve(context.Background(), truck)
			if err != nil {
				t.Fatalf("seed %d policy %s: %v", seed, policy, err)
			}
			if stats.CycleCost+1e-9 < stats.LowerBound {
				t.Fatalf("seed %d: cycle cost %.4f below lower bound %.4f", seed, stats.CycleCost, stats.LowerBound)
			}
			checkRoute(t, field, truck)
		}
	}
}

func TestSolverTightTurnLimits(t *testing.T) {
	// gridField has unit spacing, so the field resolution is 1.
	tests := []struct {
		name   string
		gamma  float64
		s      float64
		policy domain.RepairPolicy
	}{
		{"defaults", DefaultGamma, 1, domain.RepairRegularPolygon},
		{"defaults max turn", DefaultGamma, 1, domain.RepairMaxTurn},
		{"half resolution", math.Pi / 4, 0.5, domain.RepairRegularPolygon},
		{"half resolution max turn", math.Pi / 4, 0.5, domain.RepairMaxTurn},
		{"sixth of a turn", math.Pi / 6, 0.5, domain.RepairRegularPolygon},
		{"eighth of a turn", math.Pi / 8, 1, domain.RepairMaxTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 6; seed++ {
				field := gridField(t, 7, seed)
				truck, err := domain.NewTruck(units(3), tt.gamma, tt.s, c(-1, -1), 0)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				s := &Solver{Builder: NewNearestNeighbourBuilder(field.Clone(), truck.Capacity), Policy: tt.policy}
				if _, err := s.Solve(context.Background(), truck); err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
				checkRoute(t, field, truck)
			}
		})
	}
}

type fakeTours struct {
	tour []int
	err  error
}

func (f *fakeTours) Tour(_ context.Context, _ [][]float64) ([]int, error) { return f.tour, f.err }

func TestSolverFallsBackWhenTourFails(t *testing.T) {
	field := gridField(t, 4, 3)
	truck, err := domain.NewTruck(units(3), math.Pi/2, 0.1, c(0, 0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := &Solver{
		Builder: NewNearestNeighbourBuilder(field.Clone(), truck.Capacity),
		Tours:   &fakeTours{err: errors.New("lkh not installed")},
	}
	if _, err := s.Solve(context.Background(), truck); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkRoute(t, field, truck)
}

func TestSolverRejectsCancelledContext(t *testing.T) {
	field := gridField(t, 4, 3)
	truck, err := domain.NewTruck(units(3), math.Pi/2, 0.1, c(0, 0), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Solver{Builder: NewNearestNeighbourBuilder(field.Clone(), truck.Capacity)}
	if _, err := s.Solve(ctx, truck); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
