package services

import (
	"earthwork-route-service/internal/domain"
	"math/rand"
	"testing"
)

func c(x, y float64) domain.Coordinates { return domain.Coordinates{X: x, Y: y} }

func units(q float64) domain.Quantity { return domain.QuantityFromFloat(q) }

func mustField(t *testing.T, cells ...domain.Cell) *domain.Field {
	t.Helper()
	f, err := domain.NewField(cells)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	return f
}

// gridField returns an n x n unit grid with random integer volumes in [-3, 3].
func gridField(t *testing.T, n int, seed int64) *domain.Field {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	cells := make([]domain.Cell, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cells = append(cells, domain.Cell{
				Coordinates: c(float64(i), float64(j)),
				Quantity:    units(float64(rng.Intn(7) - 3)),
			})
		}
	}
	return mustField(t, cells...)
}

func singleChain(points ...domain.Coordinates) *domain.Path {
	p := domain.NewPath()
	for _, pt := range points {
		p.AddStopover(pt, 0)
	}
	return p
}

// checkRoute verifies the properties every solved route must have.
func checkRoute(t *testing.T, field *domain.Field, truck *domain.Truck) {
	t.Helper()

	if err := truck.Validate(); err != nil {
		t.Fatalf("route is not feasible: %v", err)
	}

	ms := truck.Path.Movements()
	for i := 1; i < len(ms); i++ {
		if !ms[i-1].To.Equal(ms[i].From) {
			t.Fatalf("movement %d ends at %v, movement %d starts at %v", i-1, ms[i-1].To, i, ms[i].From)
		}
	}

	replay := field.Clone()
	replay.Apply(truck.Path)
	if !replay.IsSmooth() {
		t.Fatalf("field is not smooth after replaying the route")
	}
}
