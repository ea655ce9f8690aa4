package services

import (
	"context"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/platform/obs"
	"earthwork-route-service/internal/ports"
	"errors"
	"fmt"
	"log"
)

// Solver runs the construction pipeline on one truck:
// fix field, build chains, sequence them, append them and repair the path.
//
// Tours is optional. When set, the chains are sequenced by the external tour
// solver and the assignment heuristic is the fallback when it fails.
type Solver struct {
	Builder ports.ChainsBuilder
	Tours   ports.TourSolver
	Policy  domain.RepairPolicy
}

// Solve extends the truck's path with a complete route. The builder's field
// is smooth on success. On failure the truck is left in an undefined state;
// callers that need to retry work on clones.
func (s *Solver) Solve(ctx context.Context, truck *domain.Truck) (stats domain.SequenceStats, err error) {
	defer obs.Time(ctx, "solver.Solve")(&err)

	if s.Builder == nil {
		return stats, errors.New("solve: builder must be non-nil")
	}
	if truck == nil {
		return stats, errors.New("solve: truck must be non-nil")
	}

	if err := s.Builder.FixField(truck); err != nil {
		return stats, fmt.Errorf("solve: %w", err)
	}

	start := truck.Position()
	peaks, err := s.Builder.AllChainsOfPeaks(start)
	if err != nil {
		return stats, fmt.Errorf("solve: chains of peaks: %w", err)
	}
	holes, err := s.Builder.AllChainsOfHoles(start)
	if err != nil {
		return stats, fmt.Errorf("solve: chains of holes: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("solve: %w", err)
	}

	order, stats, err := s.sequence(ctx, start, peaks, holes)
	if err != nil {
		return stats, fmt.Errorf("solve: %w", err)
	}

	truck.ImproveSequenceOfChains(order)
	for _, chain := range order {
		truck.MoveAlong(chain)
	}
	stats.CycleCost = CycleCost(order)

	if stats.Chains > 0 {
		reqID := obs.RequestID(ctx)
		log.Printf(
			"req_id=%s op=solver.sequence chains=%d lower_bound=%.4f cycle=%.4f gap=%.2f%%",
			reqID, stats.Chains, stats.LowerBound, stats.CycleCost, stats.Gap(),
		)
	}

	if err := truck.FixPath(s.Policy); err != nil {
		return stats, fmt.Errorf("solve: %w", err)
	}
	if err := truck.Validate(); err != nil {
		return stats, fmt.Errorf("solve: %w", err)
	}
	return stats, nil
}

func (s *Solver) sequence(
	ctx context.Context,
	start domain.Coordinates,
	peaks, holes []*domain.Path,
) ([]*domain.Path, domain.SequenceStats, error) {
	order, stats, err := SequenceChains(start, peaks, holes)
	if err != nil || s.Tours == nil {
		return order, stats, err
	}

	// The assignment bound stays valid for any alternating order.
	toured, err := SequenceWithTour(ctx, start, peaks, holes, s.Tours)
	if err != nil {
		reqID := obs.RequestID(ctx)
		log.Printf("req_id=%s op=solver.tour fallback=assignment err=%v", reqID, err)
		return order, stats, nil
	}
	return toured, stats, nil
}
