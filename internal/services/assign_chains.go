package services

import (
	"earthwork-route-service/internal/assignment"
	"earthwork-route-service/internal/domain"
	"fmt"
)

// connectionMatrix returns the distance from the end of every chain in from
// to the start of every chain in to.
func connectionMatrix(from, to []*domain.Path) [][]float64 {
	m := make([][]float64, len(from))
	for i, a := range from {
		m[i] = make([]float64, len(to))
		for j, b := range to {
			m[i][j] = a.Last().Distance(b.First())
		}
	}
	return m
}

// nearestChain returns the index of the unvisited chain whose first stopover
// is closest to from, or -1. Ties keep the lowest index.
func nearestChain(from domain.Coordinates, chains []*domain.Path, done []bool) int {
	best := -1
	for i, c := range chains {
		if done[i] {
			continue
		}
		if best == -1 || from.Distance(c.First()) < from.Distance(chains[best].First()) {
			best = i
		}
	}
	return best
}

// SequenceChains orders peak and hole chains into one alternating tour.
//
// Two optimal assignments are solved: peak chain -> hole chain (ph) and hole
// chain -> peak chain (hp). Their composition hp∘ph splits the peak chains into
// cycles. The tour starts at the peak chain nearest to start and follows each
// cycle; when the cycle closes it jumps to the unvisited peak chain nearest to
// the end of the last hole chain.
//
// The returned stats carry the assignment lower bound; CycleCost is left for
// the caller to fill once the order is final.
func SequenceChains(start domain.Coordinates, peaks, holes []*domain.Path) ([]*domain.Path, domain.SequenceStats, error) {
	if len(peaks) != len(holes) {
		return nil, domain.SequenceStats{}, fmt.Errorf(
			"sequence chains: %w: %d chains of peaks, %d chains of holes",
			domain.ErrUnbalancedField, len(peaks), len(holes),
		)
	}
	if len(peaks) == 0 {
		return []*domain.Path{}, domain.SequenceStats{}, nil
	}

	ph, err := assignment.Solve(connectionMatrix(peaks, holes))
	if err != nil {
		return nil, domain.SequenceStats{}, fmt.Errorf("sequence chains: assign peaks to holes: %w", err)
	}
	hp, err := assignment.Solve(connectionMatrix(holes, peaks))
	if err != nil {
		return nil, domain.SequenceStats{}, fmt.Errorf("sequence chains: assign holes to peaks: %w", err)
	}

	done := make([]bool, len(peaks))
	order := make([]*domain.Path, 0, 2*len(peaks))

	next := nearestChain(start, peaks, done)
	for next != -1 {
		done[next] = true
		hole := ph[next]
		order = append(order, peaks[next], holes[hole])

		if succ := hp[hole]; !done[succ] {
			next = succ
		} else {
			next = nearestChain(holes[hole].Last(), peaks, done)
		}
	}

	return order, domain.SequenceStats{
		Chains:     len(order),
		LowerBound: LowerBound(peaks, holes, ph, hp),
	}, nil
}

// LowerBound sums the connections of every cycle induced by hp∘ph. Any
// Hamiltonian cycle that alternates peak and hole chains costs at least as
// much.
func LowerBound(peaks, holes []*domain.Path, ph, hp []int) float64 {
	done := make([]bool, len(peaks))
	var lb float64
	for i := range peaks {
		for j := i; !done[j]; j = hp[ph[j]] {
			done[j] = true
			h := holes[ph[j]]
			lb += peaks[j].Last().Distance(h.First())
			lb += h.Last().Distance(peaks[hp[ph[j]]].First())
		}
	}
	return lb
}

// CycleCost is the length of the connections between consecutive chains,
// closing the cycle back to the first one.
func CycleCost(order []*domain.Path) float64 {
	if len(order) == 0 {
		return 0
	}
	var cost float64
	for i := range order {
		cost += order[i].Last().Distance(order[(i+1)%len(order)].First())
	}
	return cost
}
