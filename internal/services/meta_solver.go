package services

import (
	"context"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/platform/obs"
	"earthwork-route-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/gonum/floats"
	"golang.org/x/sync/errgroup"
)

// Defaults of the GRASP restart search.
const (
	DefaultChoices    = 3
	DefaultStartAlpha = 0.1
	DefaultMinAlpha   = 1e-5
	DefaultRounds     = 5
	DefaultPolish     = 50
)

// MetaSolver searches the GRASP greediness with random restarts.
//
// Alpha starts at StartAlpha and is halved while it stays above MinAlpha;
// every value gets Rounds restarts. The alpha of the best route found so far
// then gets Polish more restarts, and a last nearest-neighbour run competes
// with them. The shortest route wins; ties keep the earliest restart.
//
// Restarts run on private clones of the field and truck, on up to Workers
// goroutines. Restart i draws its random numbers from a stream derived from
// Seed and i, so the result does not depend on Workers.
type MetaSolver struct {
	Choices    int
	StartAlpha float64
	MinAlpha   float64
	Rounds     int
	Polish     int
	Seed       int64
	Workers    int
	Policy     domain.RepairPolicy
	Tours      ports.TourSolver
}

// NewMetaSolver returns a MetaSolver with the default search schedule.
func NewMetaSolver(seed int64, workers int, policy domain.RepairPolicy) *MetaSolver {
	return &MetaSolver{
		Choices:    DefaultChoices,
		StartAlpha: DefaultStartAlpha,
		MinAlpha:   DefaultMinAlpha,
		Rounds:     DefaultRounds,
		Polish:     DefaultPolish,
		Seed:       seed,
		Workers:    workers,
		Policy:     policy,
	}
}

type restart struct {
	alpha  float64
	greedy bool
}

type attempt struct {
	restart
	truck *domain.Truck
	stats domain.SequenceStats
	err   error
}

func (a *attempt) distance() float64 { return a.truck.Path.Distance() }

// better reports whether a beats the incumbent best.
func (a *attempt) better(best *attempt) bool {
	return a.err == nil && (best == nil || a.distance() < best.distance())
}

func (m *MetaSolver) alphas() []float64 {
	var out []float64
	for a := m.StartAlpha; a > m.MinAlpha; a /= 2 {
		out = append(out, a)
	}
	return out
}

// Solve returns the best route for truck over field. Neither argument is
// modified.
func (m *MetaSolver) Solve(ctx context.Context, field *domain.Field, truck *domain.Truck) (_ *domain.RoutePlan, err error) {
	defer obs.Time(ctx, "meta.Solve")(&err)

	if m.Choices < 1 || m.Rounds < 0 || m.Polish < 0 {
		return nil, fmt.Errorf("meta solve: invalid schedule (choices=%d rounds=%d polish=%d)", m.Choices, m.Rounds, m.Polish)
	}

	var explore []restart
	for _, a := range m.alphas() {
		for i := 0; i < m.Rounds; i++ {
			explore = append(explore, restart{alpha: a})
		}
	}
	first, err := m.runAll(ctx, field, truck, explore, 0)
	if err != nil {
		return nil, fmt.Errorf("meta solve: explore: %w", err)
	}

	var best *attempt
	bestAlpha := m.StartAlpha
	for i := range first {
		if first[i].better(best) {
			best = &first[i]
			bestAlpha = best.alpha
		}
	}

	polish := make([]restart, 0, m.Polish+1)
	for i := 0; i < m.Polish; i++ {
		polish = append(polish, restart{alpha: bestAlpha})
	}
	polish = append(polish, restart{greedy: true})

	second, err := m.runAll(ctx, field, truck, polish, len(explore))
	if err != nil {
		return nil, fmt.Errorf("meta solve: polish: %w", err)
	}
	for i := range second {
		if second[i].better(best) {
			best = &second[i]
		}
	}

	if best == nil {
		return nil, fmt.Errorf("meta solve: %w", lastError(first, second))
	}

	search := summarize(len(explore)+len(polish), distances(first, second))
	reqID := obs.RequestID(ctx)
	log.Printf(
		"req_id=%s op=meta.best restarts=%d solved=%d alpha=%g greedy=%t distance=%.4f worst=%.4f mean=%.4f",
		reqID, search.Restarts, search.Solved, best.alpha, best.greedy, best.distance(), search.Worst, search.Mean,
	)

	plan := newPlan(StrategyMeta, best.truck.Path, best.stats)
	if !best.greedy {
		plan.Alpha = best.alpha
	}
	plan.Search = search
	return plan, nil
}

// runAll runs restarts concurrently and returns their outcomes in input order.
// A restart whose route cannot be repaired is kept as a failed attempt; any
// other error stops the search.
func (m *MetaSolver) runAll(
	ctx context.Context,
	field *domain.Field,
	truck *domain.Truck,
	restarts []restart,
	offset int,
) ([]attempt, error) {
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]attempt, len(restarts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range restarts {
		g.Go(func() error {
			a := m.run(gctx, field, truck, r, uint64(offset+i))
			if a.err != nil && !infeasible(a.err) {
				return a.err
			}
			out[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MetaSolver) run(ctx context.Context, field *domain.Field, truck *domain.Truck, r restart, stream uint64) attempt {
	f, t := field.Clone(), truck.Clone()
	a := attempt{restart: r, truck: t}

	var builder ports.ChainsBuilder
	if r.greedy {
		builder = NewNearestNeighbourBuilder(f, t.Capacity)
	} else {
		b, err := NewGRASPBuilder(f, t.Capacity, m.Choices, r.alpha, rngFromSeed(deriveSeed(m.Seed, stream)))
		if err != nil {
			a.err = err
			return a
		}
		builder = b
	}

	s := &Solver{Builder: builder, Tours: m.Tours, Policy: m.Policy}
	a.stats, a.err = s.Solve(ctx, t)
	return a
}

func infeasible(err error) bool {
	return errors.Is(err, domain.ErrInfeasibleRepair) || errors.Is(err, domain.ErrRouteInfeasible)
}

// distances lists the path length of every successful attempt.
func distances(groups ...[]attempt) []float64 {
	var out []float64
	for _, g := range groups {
		for i := range g {
			if g[i].err == nil {
				out = append(out, g[i].distance())
			}
		}
	}
	return out
}

// summarize reports the path lengths d of the solved restarts out of n.
func summarize(n int, d []float64) *domain.SearchStats {
	s := &domain.SearchStats{Restarts: n, Solved: len(d)}
	if len(d) == 0 {
		return s
	}
	s.Best = floats.Min(d)
	s.Worst = floats.Max(d)
	s.Mean = floats.Sum(d) / float64(len(d))
	return s
}

func lastError(groups ...[]attempt) error {
	var last error
	for _, g := range groups {
		for _, a := range g {
			if a.err != nil {
				last = a.err
			}
		}
	}
	if last == nil {
		last = errors.New("no restart produced a route")
	}
	return last
}
