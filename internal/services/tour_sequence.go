package services

import (
	"context"
	"earthwork-route-service/internal/domain"
	"earthwork-route-service/internal/ports"
	"fmt"
)

// Weight of the connections a tour must never use: peak to peak and hole to
// hole.
const forbiddenConnection = 1e6

// bipartiteMatrix returns the chain connection matrix over peaks followed by
// holes, where only peak -> hole and hole -> peak connections are allowed.
func bipartiteMatrix(peaks, holes []*domain.Path) [][]float64 {
	chains := append(append([]*domain.Path(nil), peaks...), holes...)
	n := len(peaks)

	m := make([][]float64, len(chains))
	for i, a := range chains {
		m[i] = make([]float64, len(chains))
		for j, b := range chains {
			if (i < n) == (j < n) {
				m[i][j] = forbiddenConnection
				continue
			}
			m[i][j] = a.Last().Distance(b.First())
		}
	}
	return m
}

// SequenceWithTour orders the chains along a tour computed by an external
// TSP solver over the bipartite chain graph. The tour is rotated to start at
// the peak chain nearest to start.
func SequenceWithTour(
	ctx context.Context,
	start domain.Coordinates,
	peaks, holes []*domain.Path,
	solver ports.TourSolver,
) ([]*domain.Path, error) {
	if len(peaks) != len(holes) {
		return nil, fmt.Errorf(
			"sequence with tour: %w: %d chains of peaks, %d chains of holes",
			domain.ErrUnbalancedField, len(peaks), len(holes),
		)
	}
	if len(peaks) == 0 {
		return []*domain.Path{}, nil
	}

	n := len(peaks)
	tour, err := solver.Tour(ctx, bipartiteMatrix(peaks, holes))
	if err != nil {
		return nil, fmt.Errorf("sequence with tour: %w", err)
	}
	if len(tour) != 2*n {
		return nil, fmt.Errorf("sequence with tour: tour visits %d chains, want %d", len(tour), 2*n)
	}

	seen := make([]bool, 2*n)
	for k, v := range tour {
		if v < 0 || v >= 2*n || seen[v] {
			return nil, fmt.Errorf("sequence with tour: invalid node %d at position %d", v, k)
		}
		seen[v] = true
		if (v < n) == (tour[(k+1)%len(tour)] < n) {
			return nil, fmt.Errorf("sequence with tour: tour does not alternate at position %d", k)
		}
	}

	first := 0
	best := nearestChain(start, peaks, make([]bool, n))
	for k, v := range tour {
		if v == best {
			first = k
			break
		}
	}

	all := append(append([]*domain.Path(nil), peaks...), holes...)
	order := make([]*domain.Path, 0, 2*n)
	for k := range tour {
		order = append(order, all[tour[(first+k)%len(tour)]])
	}
	return order, nil
}
