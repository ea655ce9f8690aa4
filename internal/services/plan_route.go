package services

import (
	"context"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/platform/obs"
	"earthwork-route-service/internal/ports"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Strategy string

const (
	StrategyNearestNeighbour Strategy = "nearest_neighbour"
	StrategyGRASP            Strategy = "grasp"
	StrategyMeta             Strategy = "meta"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyNearestNeighbour, "nn":
		return StrategyNearestNeighbour, nil
	case StrategyGRASP:
		return StrategyGRASP, nil
	case StrategyMeta:
		return StrategyMeta, nil
	}
	return "", fmt.Errorf("parse strategy: unknown strategy %q", s)
}

// PlanRouteRequest describes the truck and the search parameters of a solve.
type PlanRouteRequest struct {
	Strategy     Strategy
	Capacity     domain.Quantity
	Gamma        float64
	MinSegment   float64
	Start        domain.Coordinates
	InitialCargo domain.Quantity

	// GRASP parameters, ignored by nearest_neighbour.
	Choices int
	Alpha   float64
	Seed    int64

	// Meta-solver worker pool size; 0 means GOMAXPROCS.
	Workers int
	Policy  domain.RepairPolicy
}

// DefaultGamma is the turn limit used when a request leaves it unset.
const DefaultGamma = math.Pi / 4

// WithDefaults fills unset parameters: a zero Gamma becomes DefaultGamma, a
// negative MinSegment becomes the field resolution (the smaller of its row
// and column spacings) and zero Choices become DefaultChoices.
func (r PlanRouteRequest) WithDefaults(field *domain.Field) PlanRouteRequest {
	if r.Gamma == 0 {
		r.Gamma = DefaultGamma
	}
	if r.MinSegment < 0 && field != nil {
		r.MinSegment = field.Resolution()
	}
	if r.Choices == 0 {
		r.Choices = DefaultChoices
	}
	return r
}

// PlanRoute solves one field. The field is not modified; the returned plan
// carries a fresh id.
func PlanRoute(
	ctx context.Context,
	field *domain.Field,
	req PlanRouteRequest,
	tours ports.TourSolver,
) (_ *domain.RoutePlan, err error) {
	defer obs.Time(ctx, "services.PlanRoute")(&err)

	if field == nil {
		return nil, errors.New("plan route: field must be non-nil")
	}
	truck, err := domain.NewTruck(req.Capacity, req.Gamma, req.MinSegment, req.Start, req.InitialCargo)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	switch req.Strategy {
	case StrategyMeta:
		m := NewMetaSolver(req.Seed, req.Workers, req.Policy)
		if req.Choices > 0 {
			m.Choices = req.Choices
		}
		m.Tours = tours
		plan, err := m.Solve(ctx, field, truck)
		if err != nil {
			return nil, fmt.Errorf("plan route: %w", err)
		}
		return plan, nil

	case StrategyGRASP:
		choices := req.Choices
		if choices == 0 {
			choices = DefaultChoices
		}
		b, err := NewGRASPBuilder(field.Clone(), truck.Capacity, choices, req.Alpha, rngFromSeed(req.Seed))
		if err != nil {
			return nil, fmt.Errorf("plan route: %w", err)
		}
		return solveOnce(ctx, StrategyGRASP, req.Alpha, b, truck, tours, req.Policy)

	case StrategyNearestNeighbour, "":
		b := NewNearestNeighbourBuilder(field.Clone(), truck.Capacity)
		return solveOnce(ctx, StrategyNearestNeighbour, 0, b, truck, tours, req.Policy)
	}

	return nil, fmt.Errorf("plan route: unknown strategy %q", req.Strategy)
}

func solveOnce(
	ctx context.Context,
	strategy Strategy,
	alpha float64,
	builder ports.ChainsBuilder,
	truck *domain.Truck,
	tours ports.TourSolver,
	policy domain.RepairPolicy,
) (*domain.RoutePlan, error) {
	s := &Solver{Builder: builder, Tours: tours, Policy: policy}
	stats, err := s.Solve(ctx, truck)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}
	plan := newPlan(strategy, truck.Path, stats)
	plan.Alpha = alpha
	return plan, nil
}

func newPlan(strategy Strategy, path *domain.Path, stats domain.SequenceStats) *domain.RoutePlan {
	return &domain.RoutePlan{
		ID:       uuid.NewString(),
		Strategy: string(strategy),
		Path:     path,
		Stats:    stats,
		SolvedAt: time.Now().UTC(),
	}
}
