package ports

import "context"

// Contract for an external traveling salesman solver.
type TourSolver interface {
	// Return a tour over the rows of a square (possibly asymmetric) distance
	// matrix as a permutation of 0-based indices.
	Tour(ctx context.Context, dist [][]float64) ([]int, error)
}
