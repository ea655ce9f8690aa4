package domain

import "time"

// Represents the sequencing diagnostics of a solve.
// LowerBound is a lower bound on the minimum Hamiltonian cycle over chain
// endpoints; CycleCost is the cost of the cycle the heuristic actually built.
// Both are zero when the field needed no full truckloads.
type SequenceStats struct {
	Chains     int
	LowerBound float64
	CycleCost  float64
}

// Gap returns the relative distance of CycleCost from LowerBound, in percent.
func (s SequenceStats) Gap() float64 {
	if s.LowerBound == 0 {
		return 0
	}
	return (s.CycleCost - s.LowerBound) / s.LowerBound * 100
}

// SearchStats summarizes the restarts of a randomized search. Best, Worst
// and Mean are path lengths over the restarts that produced a route.
type SearchStats struct {
	Restarts int
	Solved   int
	Best     float64
	Worst    float64
	Mean     float64
}

// Represents the planned earthwork route of the truck.
// A RoutePlan is the output of a solver: the repaired path in visit order
// and the parameters that produced it. It contains no side effects.
type RoutePlan struct {
	ID       string
	Strategy string
	Alpha    float64
	Path     *Path
	Stats    SequenceStats
	SolvedAt time.Time

	// Search is set by strategies that run restarts.
	Search *SearchStats
}

// Distance is the total length of the planned path.
func (r *RoutePlan) Distance() float64 {
	if r == nil || r.Path == nil {
		return 0
	}
	return r.Path.Distance()
}
